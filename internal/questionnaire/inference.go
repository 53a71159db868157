package questionnaire

import (
	"strings"

	"github.com/Brownie44l1/dermascan-api/internal/condition"
)

type conditionRule struct {
	reported func(Answers) bool
	tag      condition.Tag
}

// conditionRules are independent and additive; their order is the order
// conditions are listed in the report.
var conditionRules = []conditionRule{
	{func(a Answers) bool { return a.Acne }, condition.Acne},
	{func(a Answers) bool { return a.Oiliness }, condition.OilySkin},
	{func(a Answers) bool { return a.Whiteheads || a.Blackheads }, condition.CloggedPores},
	{func(a Answers) bool { return a.Dryness }, condition.DrySkin},
	{func(a Answers) bool { return a.Pigmentation }, condition.Pigmentation},
	{func(a Answers) bool { return a.Wrinkles }, condition.Wrinkles},
	{func(a Answers) bool { return a.Redness }, condition.Redness},
	{func(a Answers) bool { return a.DarkSpots }, condition.DarkSpots},
}

// Infer returns the conditions the user reported.
func Infer(a Answers) *condition.Set {
	set := condition.NewSet()
	for _, r := range conditionRules {
		if r.reported(a) {
			set.Add(r.tag)
		}
	}
	return set
}

type tier struct {
	below int // exclusive upper bound; 0 means unbounded
	text  string
}

func pickTier(value int, tiers []tier) string {
	for _, t := range tiers {
		if t.below == 0 || value < t.below {
			return t.text
		}
	}
	return ""
}

var (
	ageTiers = []tier{
		{20, "Your age indicates that hormonal changes are common, so minor skin issues are normal."},
		{40, "You are in an active age group where lifestyle and stress have a major impact on skin health."},
		{0, "At this age, natural collagen production slows down. Use hydrating and anti-aging products regularly."},
	}
	dietTiers = []tier{
		{3, "Your diet seems poor. Include more fruits, vegetables, and water-rich foods for better skin."},
		{5, "Your diet is average, but you can improve by reducing oily and processed foods."},
		{0, "Your diet is Excellent! Keep maintaining a balanced diet."},
	}
	stressTiers = []tier{
		{3, "Your stress levels seem manageable - great job for that!"},
		{5, "Moderate stress can sometimes trigger acne or dullness. Try relaxation or mindfulness activities."},
		{0, "High stress affects hormones and skin barrier - focus on relaxation and healthy sleep."},
	}
	waterTiers = []tier{
		{3, "Your water intake is very low. Drink at least 6-8 glasses per day to keep skin hydration."},
		{6, "Try to drink more water - hydration improves skin elasticity and glow."},
		{0, "Your water intake is great! Keep your hydration level consistent."},
	}
	genderSentences = map[Gender]string{
		GenderFemale: "Women usually have more hormonal fluctuations affecting skin, regular care helps maintain balance.",
		GenderMale:   "Men's skin is thicker and less sensitive, but proper cleansing and hydration are still essential.",
		GenderOther:  "Everyone's skin needs care - focus on balance and hydration.",
	}
)

func numeric(value func(Answers) int, tiers []tier) func(Answers) string {
	return func(a Answers) string {
		v := value(a)
		if v == 0 {
			return ""
		}
		return pickTier(v, tiers)
	}
}

func genderSentence(a Answers) string {
	if a.Gender == GenderUnspecified {
		return ""
	}
	if s, ok := genderSentences[a.Gender]; ok {
		return s
	}
	return genderSentences[GenderOther]
}

// narrativeSteps run in report order: age, gender, diet, stress, water.
var narrativeSteps = []func(Answers) string{
	numeric(func(a Answers) int { return a.Age }, ageTiers),
	genderSentence,
	numeric(func(a Answers) int { return a.DietScore }, dietTiers),
	numeric(func(a Answers) int { return a.Stress }, stressTiers),
	numeric(func(a Answers) int { return a.WaterIntake }, waterTiers),
}

// Narrative returns the personalized analysis, one "- " prefixed sentence
// per answered dimension. Zero or empty answers are skipped.
func Narrative(a Answers) string {
	lines := make([]string, 0, len(narrativeSteps))
	for _, step := range narrativeSteps {
		if s := step(a); s != "" {
			lines = append(lines, "- "+s)
		}
	}
	return strings.Join(lines, "\n")
}
