package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Brownie44l1/dermascan-api/internal/condition"
)

// ErrMalformed is returned when text does not follow the report layout.
var ErrMalformed = errors.New("malformed report")

type section int

const (
	sectionNone section = iota
	sectionHeader
	sectionPersonalized
	sectionForm
	sectionImage
	sectionRecommend
)

var sectionTitles = map[string]section{
	headerTitle:       sectionHeader,
	personalizedTitle: sectionPersonalized,
	formTitle:         sectionForm,
	imageTitle:        sectionImage,
	recommendTitle:    sectionRecommend,
}

// Parse reads a report written by TextWriter. Confidence is not part of the
// text layout, so parsed image observations carry zero confidence.
func Parse(r io.Reader) (*Report, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	rep := &Report{}
	seen := make(map[section]bool)
	var narrative []string
	current := sectionNone

	for scanner.Scan() {
		line := scanner.Text()
		if s, ok := sectionTitles[line]; ok {
			current = s
			seen[s] = true
			continue
		}
		if line == "" || strings.Trim(line, "-") == "" {
			continue
		}

		switch current {
		case sectionPersonalized:
			narrative = append(narrative, line)
		case sectionForm:
			tag, ok := strings.CutPrefix(line, reportedPrefix)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected observation line %q", ErrMalformed, line)
			}
			rep.Conditions = append(rep.Conditions, condition.Tag(tag))
		case sectionImage:
			var obs ImageObservation
			idx, class, ok := strings.Cut(strings.TrimPrefix(line, "Image "), ": ")
			if !ok || !strings.HasPrefix(line, "Image ") {
				return nil, fmt.Errorf("%w: unexpected image line %q", ErrMalformed, line)
			}
			if _, err := fmt.Sscanf(idx, "%d", &obs.Index); err != nil {
				return nil, fmt.Errorf("%w: bad image index in %q", ErrMalformed, line)
			}
			obs.Class = class
			rep.Images = append(rep.Images, obs)
		case sectionRecommend:
			rec, ok := strings.CutPrefix(line, recommendPrefix)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected recommendation line %q", ErrMalformed, line)
			}
			rep.Recommendations = append(rep.Recommendations, rec)
		default:
			return nil, fmt.Errorf("%w: text outside a section: %q", ErrMalformed, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, s := range []section{sectionHeader, sectionPersonalized, sectionForm, sectionImage, sectionRecommend} {
		if !seen[s] {
			return nil, fmt.Errorf("%w: missing section %d", ErrMalformed, s)
		}
	}
	rep.Narrative = strings.Join(narrative, "\n")
	return rep, nil
}
