package seed

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	appModels "github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// CourseCreator is what the seeder needs from a course store
type CourseCreator interface {
	CreateCourse(in appModels.CourseInput) (appModels.Course, error)
}

// File is the layout of a YAML seed file
type File struct {
	Courses []appModels.CourseInput `yaml:"courses"`
}

// DefaultCourses is used when no seed file is configured
var DefaultCourses = []appModels.CourseInput{
	{Name: "Mathematics", Description: "Calculus, algebra and discrete maths"},
	{Name: "Computer Science", Description: "Programming, algorithms and systems"},
	{Name: "Physics", Description: "Mechanics, electromagnetism and optics"},
	{Name: "Literature", Description: "Reading and writing across periods"},
}

// LoadFile reads a YAML seed file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// CreateDefaultCourses creates the courses from seedPath, or DefaultCourses
// when seedPath is empty. Courses that already exist are skipped.
func CreateDefaultCourses(repo CourseCreator, seedPath string, lgr zerolog.Logger) error {
	courses := DefaultCourses
	if seedPath != "" {
		f, err := LoadFile(seedPath)
		if err != nil {
			lgr.Error().Err(err).Str("path", seedPath).Msg("Failed to load seed file")
			return err
		}
		courses = f.Courses
	}

	lgr.Info().Int("count", len(courses)).Msg("Checking/Creating default courses...")
	var finalErr error // To collect potential errors without stopping the process

	for _, in := range courses {
		course, err := repo.CreateCourse(in)
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			lgr.Debug().Str("course", in.Name).Msg("Course already exists, skipping")
		case err != nil:
			lgr.Error().Err(err).Str("course", in.Name).Msg("Error creating course")
			finalErr = errors.Join(finalErr, err)
		default:
			lgr.Debug().Str("course", course.Name).Str("id", course.ID).Msg("Course created")
		}
	}

	lgr.Info().Msg("Default course check/creation finished.")
	return finalErr
}
