// Package store archives questionnaire submissions and rendered reports in
// SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Brownie44l1/dermascan-api/internal/questionnaire"
	"github.com/Brownie44l1/dermascan-api/internal/report"
)

// ErrNotFound is returned when no matching record exists.
var ErrNotFound = errors.New("record not found")

// Submission is one archived questionnaire.
type Submission struct {
	ID           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	Age          int
	Gender       string
	SkinType     string
	Sensitive    bool
	Acne         bool
	Pigmentation bool
	Wrinkles     bool
	DarkSpots    bool
	Whiteheads   bool
	Blackheads   bool
	Oiliness     bool
	Dryness      bool
	Redness      bool
	Itching      bool
	DietScore    int
	Stress       int
	WaterIntake  int
}

// ReportRecord is one archived report in its text layout.
type ReportRecord struct {
	ID           uint   `gorm:"primaryKey"`
	SubmissionID string `gorm:"index"`
	CreatedAt    time.Time
	ImageCount   int
	Conditions   string
	Text         string `gorm:"type:text"`
}

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the SQLite database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Submission{}, &ReportRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSubmission archives answers under id.
func (s *Store) SaveSubmission(ctx context.Context, id string, a questionnaire.Answers) error {
	sub := Submission{
		ID:           id,
		Age:          a.Age,
		Gender:       string(a.Gender),
		SkinType:     a.SkinType,
		Sensitive:    a.Sensitive,
		Acne:         a.Acne,
		Pigmentation: a.Pigmentation,
		Wrinkles:     a.Wrinkles,
		DarkSpots:    a.DarkSpots,
		Whiteheads:   a.Whiteheads,
		Blackheads:   a.Blackheads,
		Oiliness:     a.Oiliness,
		Dryness:      a.Dryness,
		Redness:      a.Redness,
		Itching:      a.Itching,
		DietScore:    a.DietScore,
		Stress:       a.Stress,
		WaterIntake:  a.WaterIntake,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}
	return nil
}

// Submission returns the archived answers for id.
func (s *Store) Submission(ctx context.Context, id string) (questionnaire.Answers, error) {
	var sub Submission
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return questionnaire.Answers{}, ErrNotFound
		}
		return questionnaire.Answers{}, err
	}
	return questionnaire.Answers{
		Age:          sub.Age,
		Gender:       questionnaire.Gender(sub.Gender),
		SkinType:     sub.SkinType,
		Sensitive:    sub.Sensitive,
		Acne:         sub.Acne,
		Pigmentation: sub.Pigmentation,
		Wrinkles:     sub.Wrinkles,
		DarkSpots:    sub.DarkSpots,
		Whiteheads:   sub.Whiteheads,
		Blackheads:   sub.Blackheads,
		Oiliness:     sub.Oiliness,
		Dryness:      sub.Dryness,
		Redness:      sub.Redness,
		Itching:      sub.Itching,
		DietScore:    sub.DietScore,
		Stress:       sub.Stress,
		WaterIntake:  sub.WaterIntake,
	}, nil
}

// SaveReport archives r in its text layout, keyed by r.ID.
func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	conditions := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		conditions[i] = string(c)
	}
	rec := ReportRecord{
		SubmissionID: r.ID,
		ImageCount:   len(r.Images),
		Conditions:   strings.Join(conditions, ","),
		Text:         r.Text(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// LatestReport returns the most recent report for a submission, parsed back
// from its text layout.
func (s *Store) LatestReport(ctx context.Context, submissionID string) (*report.Report, error) {
	var rec ReportRecord
	err := s.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("id desc").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r, err := report.Parse(strings.NewReader(rec.Text))
	if err != nil {
		return nil, err
	}
	r.ID = rec.SubmissionID
	r.CreatedAt = rec.CreatedAt
	return r, nil
}
