// Package questionnaire holds the self-report form: parsing and validation
// of answers, inference of reported conditions, and the personalized
// narrative derived from age, gender and lifestyle scores.
package questionnaire

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Form field names.
const (
	FieldAge          = "age"
	FieldGender       = "gender"
	FieldSkinType     = "skin_type"
	FieldSensitive    = "sensitive"
	FieldAcne         = "acne"
	FieldPigmentation = "pigmentation"
	FieldWrinkles     = "wrinkles"
	FieldDarkSpots    = "dark_spots"
	FieldWhiteheads   = "whiteheads"
	FieldBlackheads   = "blackheads"
	FieldOiliness     = "oiliness"
	FieldDryness      = "dryness"
	FieldRedness      = "redness"
	FieldItching      = "itching"
	FieldDietScore    = "diet_score"
	FieldStress       = "stress"
	FieldWaterIntake  = "water_intake"
)

// Score scales. Zero means "not answered".
const (
	MaxDietScore   = 5
	MaxStress      = 5
	MaxWaterIntake = 10
)

// ErrInvalidQuestionnaire is returned for a missing required field or a value
// outside its domain.
var ErrInvalidQuestionnaire = errors.New("invalid questionnaire")

// FieldError reports which field failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrInvalidQuestionnaire, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidQuestionnaire
}

// Gender is the enumerated gender answer. The empty value means the
// question was skipped.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderOther       Gender = "other"
)

// Answers is one submitted questionnaire. It is treated as immutable once
// parsed.
type Answers struct {
	Age      int    `json:"age"`
	Gender   Gender `json:"gender"`
	SkinType string `json:"skin_type,omitempty"`

	Sensitive    bool `json:"sensitive"`
	Acne         bool `json:"acne"`
	Pigmentation bool `json:"pigmentation"`
	Wrinkles     bool `json:"wrinkles"`
	DarkSpots    bool `json:"dark_spots"`
	Whiteheads   bool `json:"whiteheads"`
	Blackheads   bool `json:"blackheads"`
	Oiliness     bool `json:"oiliness"`
	Dryness      bool `json:"dryness"`
	Redness      bool `json:"redness"`
	Itching      bool `json:"itching"`

	DietScore   int `json:"diet_score"`
	Stress      int `json:"stress"`
	WaterIntake int `json:"water_intake"`
}

// ParseForm reads answers from submitted form values.
func ParseForm(values url.Values) (Answers, error) {
	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}
	return Parse(fields)
}

// Parse reads answers from a field map. Age is required; yes/no flags default
// to "no"; scores and gender default to unanswered.
func Parse(fields map[string]string) (Answers, error) {
	get := func(name string) string {
		return strings.TrimSpace(fields[name])
	}

	var a Answers

	age := get(FieldAge)
	if age == "" {
		return Answers{}, &FieldError{Field: FieldAge, Reason: "is required"}
	}
	n, err := strconv.Atoi(age)
	if err != nil {
		return Answers{}, &FieldError{Field: FieldAge, Reason: "must be an integer"}
	}
	a.Age = n

	a.Gender = Gender(get(FieldGender))
	a.SkinType = get(FieldSkinType)
	a.Normalize()

	flags := []struct {
		name string
		dst  *bool
	}{
		{FieldSensitive, &a.Sensitive},
		{FieldAcne, &a.Acne},
		{FieldPigmentation, &a.Pigmentation},
		{FieldWrinkles, &a.Wrinkles},
		{FieldDarkSpots, &a.DarkSpots},
		{FieldWhiteheads, &a.Whiteheads},
		{FieldBlackheads, &a.Blackheads},
		{FieldOiliness, &a.Oiliness},
		{FieldDryness, &a.Dryness},
		{FieldRedness, &a.Redness},
		{FieldItching, &a.Itching},
	}
	for _, f := range flags {
		switch strings.ToLower(get(f.name)) {
		case "yes":
			*f.dst = true
		case "no", "":
		default:
			return Answers{}, &FieldError{Field: f.name, Reason: `must be "yes" or "no"`}
		}
	}

	scores := []struct {
		name string
		dst  *int
	}{
		{FieldDietScore, &a.DietScore},
		{FieldStress, &a.Stress},
		{FieldWaterIntake, &a.WaterIntake},
	}
	for _, s := range scores {
		v := get(s.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Answers{}, &FieldError{Field: s.name, Reason: "must be an integer"}
		}
		*s.dst = n
	}

	if err := a.Validate(); err != nil {
		return Answers{}, err
	}
	return a, nil
}

// Normalize lower-cases the gender and trims the free-text fields.
func (a *Answers) Normalize() {
	a.Gender = Gender(strings.ToLower(strings.TrimSpace(string(a.Gender))))
	a.SkinType = strings.TrimSpace(a.SkinType)
}

// Validate checks every field against its documented domain.
func (a Answers) Validate() error {
	if a.Age < 0 {
		return &FieldError{Field: FieldAge, Reason: "must be non-negative"}
	}
	switch a.Gender {
	case GenderUnspecified, GenderFemale, GenderMale, GenderOther:
	default:
		return &FieldError{Field: FieldGender, Reason: "must be female, male or other"}
	}

	ranges := []struct {
		name  string
		value int
		max   int
	}{
		{FieldDietScore, a.DietScore, MaxDietScore},
		{FieldStress, a.Stress, MaxStress},
		{FieldWaterIntake, a.WaterIntake, MaxWaterIntake},
	}
	for _, r := range ranges {
		if r.value < 0 || r.value > r.max {
			return &FieldError{Field: r.name, Reason: fmt.Sprintf("must be between 0 and %d", r.max)}
		}
	}
	return nil
}
