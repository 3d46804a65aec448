package properties

import (
	"fmt"
	"regexp"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
)

// Property keys of the upstream feed and of the canonical output.
const (
	KeyPubDate     = "pubDate"
	KeyPublished   = "pub-date"
	KeyDescription = "description"
	KeyAlertLevel  = "alert-level"
	KeyCategory    = "category"
	KeyPermaLink   = "guid_isPermaLink"
	KeyStatus      = "status"
	KeyType        = "type"
	KeyFire        = "fire"
	KeyLink        = "link"
	KeyUpdated     = "updated"
)

var yes = regexp.MustCompile(`(?i)yes`)

// MissingFieldError reports a property the feed schema guarantees but the
// incident lacks.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required property %q is missing or not a string", e.Key)
}

// InconsistentFieldWarning notes an alert level in the description that
// disagrees with the incident category. The category wins.
type InconsistentFieldWarning struct {
	AlertLevel string
	Category   string
}

func (w InconsistentFieldWarning) String() string {
	return fmt.Sprintf("alert level %q does not match category %q", w.AlertLevel, w.Category)
}

// Unpacker converts raw feed properties to canonical properties.
type Unpacker struct {
	// GenericLink is removed from incidents linking to it.
	GenericLink string
	Log         zerolog.Logger
}

// Unpack returns a canonical copy of raw; raw itself is left untouched.
// Mismatches between the alert level and the category are logged and
// returned as warnings.
func (u *Unpacker) Unpack(raw geojson.Properties) (geojson.Properties, []InconsistentFieldWarning, error) {
	props := raw.Clone()
	if props == nil {
		props = geojson.Properties{}
	}

	if v, ok := props[KeyPubDate]; ok {
		published, err := NormalizeDate(fmt.Sprint(v), FormatPublished)
		if err != nil {
			return nil, nil, err
		}
		props[KeyPublished] = published
	}
	delete(props, KeyPubDate)

	if v, ok := props[KeyDescription]; ok {
		fields, err := ParseDescription(fmt.Sprint(v))
		if err != nil {
			return nil, nil, err
		}
		for _, k := range fields.Keys() {
			props[k], _ = fields.Get(k)
		}
		delete(props, KeyDescription)
	}

	warnings, err := u.alertLevel(props)
	if err != nil {
		return nil, nil, err
	}

	delete(props, KeyPermaLink)

	for _, key := range []string{KeyStatus, KeyType} {
		if s, ok := props[key].(string); ok {
			props[key] = ToToken(s)
		}
	}

	fire, ok := props[KeyFire].(string)
	if !ok {
		return nil, nil, &MissingFieldError{Key: KeyFire}
	}
	props[KeyFire] = yes.MatchString(fire)

	if link, ok := props[KeyLink].(string); ok && u.GenericLink != "" && link == u.GenericLink {
		delete(props, KeyLink)
	}

	return props, warnings, nil
}

// alertLevel replaces the alert level with the tokenized category.
func (u *Unpacker) alertLevel(props geojson.Properties) ([]InconsistentFieldWarning, error) {
	category, ok := props[KeyCategory].(string)
	if !ok {
		return nil, &MissingFieldError{Key: KeyCategory}
	}

	var warnings []InconsistentFieldWarning
	if level, ok := props[KeyAlertLevel].(string); ok && level != "" && category != "" && level != category {
		w := InconsistentFieldWarning{AlertLevel: level, Category: category}
		u.Log.Warn().
			Str("alert_level", level).
			Str("category", category).
			Interface("guid", props["guid"]).
			Msg("Alert level does not match category")
		warnings = append(warnings, w)
	}

	delete(props, KeyAlertLevel)
	props[KeyAlertLevel] = ToToken(category)
	delete(props, KeyCategory)

	return warnings, nil
}
