// Package condition defines the canonical skin-condition tags shared by the
// questionnaire, the recommendation table and the report.
package condition

// Tag is a canonical condition identifier such as "acne".
type Tag string

const (
	OilySkin     Tag = "oily skin"
	DrySkin      Tag = "dry skin"
	Acne         Tag = "acne"
	CloggedPores Tag = "clogged pores"
	Pigmentation Tag = "pigmentation"
	Wrinkles     Tag = "wrinkles"
	DarkSpots    Tag = "dark spots"
	Milia        Tag = "milia"
	Redness      Tag = "redness"
)

// Set is a duplicate-free collection of tags that remembers insertion order.
// The zero value is ready to use.
type Set struct {
	tags  []Tag
	index map[Tag]struct{}
}

// NewSet returns a set holding tags in first-seen order.
func NewSet(tags ...Tag) *Set {
	s := &Set{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts t unless it is already present. It reports whether t was new.
func (s *Set) Add(t Tag) bool {
	if s.index == nil {
		s.index = make(map[Tag]struct{})
	}
	if _, ok := s.index[t]; ok {
		return false
	}
	s.index[t] = struct{}{}
	s.tags = append(s.tags, t)
	return true
}

// Has reports whether t is in the set.
func (s *Set) Has(t Tag) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[t]
	return ok
}

// Len returns the number of distinct tags.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tags)
}

// Tags returns a copy of the tags in insertion order.
func (s *Set) Tags() []Tag {
	if s == nil {
		return nil
	}
	out := make([]Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Strings returns the tags as plain strings in insertion order.
func (s *Set) Strings() []string {
	tags := s.Tags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
