// Package recommend maps condition tags to hand-written skincare advice.
package recommend

import "github.com/Brownie44l1/dermascan-api/internal/condition"

// Entry binds one condition to its recommendation text.
type Entry struct {
	Tag  condition.Tag
	Text string
}

// Table is the closed recommendation table in canonical output order.
// Milia has no questionnaire rule today; its entry is kept for when one exists.
var Table = []Entry{
	{
		Tag: condition.OilySkin,
		Text: "Your skin appears oily, which means your pores may produce excess sebum throughout the day. " +
			"Use a gentle gel-based facewash twice daily to remove oil without damaging your skin barrier. " +
			"Incorporate salicylic acid (1–2%) three to four times a week to control oil and prevent clogged pores. " +
			"Choose oil-free, non-comedogenic moisturizers with niacinamide or hyaluronic acid to maintain balance. " +
			"Avoid heavy creams or thick sunscreens and switch to a lightweight gel-based SPF 50. " +
			"Using a clay mask twice a week can help clear deep impurities. " +
			"Try not to overwash your face as it increases oil production, and use blotting sheets to control shine during the day.",
	},
	{
		Tag: condition.DrySkin,
		Text: "Your skin shows signs of dryness, which means your moisture barrier may need extra support. " +
			"Use a hydrating, cream-based non-foaming cleanser to maintain hydration. " +
			"Apply a thick moisturizer with ceramides, squalane, glycerin, or shea butter twice daily. " +
			"Use a hydrating serum with hyaluronic acid on damp skin to improve moisture retention. " +
			"Avoid using hot water on your face since it increases dryness and weakens the barrier. " +
			"Daily sunscreen is essential because dry skin develops fine lines faster. " +
			"Stay away from harsh scrubs and alcohol-based toners, and consider using an overnight sleeping mask to repair the skin barrier.",
	},
	{
		Tag: condition.Acne,
		Text: "Your skin assessment indicates acne-prone skin, which requires controlled and gentle care. " +
			"Use a salicylic acid (1–2%) facewash once daily to unclog pores and treat active breakouts. " +
			"Apply benzoyl peroxide (2.5%) gel on active pimples as a spot treatment. " +
			"Include a niacinamide serum to reduce inflammation and balance oil production. " +
			"Avoid squeezing or picking pimples as it leads to scarring and dark spots. " +
			"Use a lightweight gel moisturizer to prevent dryness caused by active ingredients. " +
			"Daily sunscreen is crucial to stop acne marks from darkening, and reducing sugar and dairy intake also helps control acne.",
	},
	{
		Tag: condition.CloggedPores,
		Text: "Your skin shows signs of clogged pores, whiteheads, or blackheads, which means your skin needs consistent exfoliation. " +
			"Salicylic acid (BHA) is highly effective as it cleans deep inside the pores, so include it regularly in your routine. " +
			"Use a clay mask twice a week to absorb oil and draw out impurities. " +
			"Niacinamide serum can also help reduce oiliness and make pores appear smaller. " +
			"Avoid using harsh physical scrubs, and instead exfoliate gently once or twice a week. " +
			"Use lightweight, non-comedogenic products to avoid further pore congestion. " +
			"Retinol at night can also prevent whiteheads and improve skin turnover.",
	},
	{
		Tag: condition.Pigmentation,
		Text: "Your skin shows pigmentation concerns, which can be improved with consistent care. " +
			"Use a Vitamin C serum every morning to brighten your complexion and fade uneven tone. " +
			"At night, use Kojic Acid or Alpha Arbutin for targeted pigmentation correction. " +
			"Daily sunscreen with SPF 50 is essential because sun exposure makes pigmentation worse. " +
			"Avoid fragrance-heavy skincare products that may darken sensitive areas. " +
			"Niacinamide can help even out skin tone, and gentle AHA exfoliation once a week promotes brighter, smoother skin. " +
			"Avoid harsh scrubs as they can irritate the skin and deepen pigmentation.",
	},
	{
		Tag: condition.Wrinkles,
		Text: "Your skin shows early signs of fine lines or wrinkles, which can be improved with the right care. " +
			"Start by using a low-strength Retinol (0.2–0.5%) twice a week to boost collagen production. " +
			"A thick, deeply hydrating moisturizer will keep your skin elastic and prevent further wrinkle formation. " +
			"Always use sunscreen every morning, as most signs of aging are caused by sun exposure. " +
			"Adding a peptide serum at night can further support skin repair. " +
			"Hyaluronic acid can keep your skin plump and hydrated. " +
			"Avoid pulling or rubbing the skin and try to limit sugar intake, which accelerates skin aging.",
	},
	{
		Tag: condition.DarkSpots,
		Text: "Your analysis shows dark spots, which can fade with the right brightening routine. " +
			"Use Niacinamide (5–10%) daily to lighten spots and improve overall glow. " +
			"Vitamin C serum every morning helps brighten the skin and reduce discoloration. " +
			"Retinol at night accelerates cell turnover and helps fade long-term marks. " +
			"Daily sunscreen is extremely important because sun exposure darkens existing spots. " +
			"Avoid touching or picking pimples, as it leads to new dark marks. " +
			"Ingredients like kojic acid, licorice extract, or AHA exfoliants once a week can help treat stubborn areas.",
	},
	{
		Tag: condition.Milia,
		Text: "Your image indicates signs of milia. These tiny white bumps form when keratin gets trapped under the skin. " +
			"Use gentle exfoliation with AHA (lactic acid) 1–2 times weekly. Avoid heavy creams. " +
			"Use non-comedogenic products only. Retinol at night also helps in reducing milia.",
	},
	{
		Tag: condition.Redness,
		Text: "Your skin shows redness which usually indicates irritation or sensitivity. " +
			"Use a fragrance-free gentle cleanser and moisturize with ceramides or centella calming cream. " +
			"Avoid scrubs, hot water, and strong actives; always use SPF to prevent flare-ups.",
	},
}

// Recommend returns the text for every condition in set, in Table order.
// Tags without an entry are ignored.
func Recommend(set *condition.Set) []string {
	out := make([]string, 0, set.Len())
	for _, e := range Table {
		if set.Has(e.Tag) {
			out = append(out, e.Text)
		}
	}
	return out
}

// Text returns the recommendation for a single tag.
func Text(tag condition.Tag) (string, bool) {
	for _, e := range Table {
		if e.Tag == tag {
			return e.Text, true
		}
	}
	return "", false
}
