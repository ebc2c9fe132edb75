package app

import (
	"context"
	"sort"

	"classroom-quiz-service/internal/domain"
)

// ProfileRepository looks up directory records.
type ProfileRepository interface {
	Profile(ctx context.Context, userID string) (domain.Profile, error)
	Students(ctx context.Context, filter domain.StudentFilter) ([]domain.Profile, error)
	// Names returns full names keyed by id in one lookup; unknown ids are absent.
	Names(ctx context.Context, ids []string) (map[string]string, error)
}

// Directory resolves users to profiles and capability sets.
type Directory struct {
	profiles ProfileRepository
}

func NewDirectory(profiles ProfileRepository) *Directory {
	return &Directory{profiles: profiles}
}

func (d *Directory) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	return d.profiles.Profile(ctx, userID)
}

// Students returns the filtered student population ordered by name.
func (d *Directory) Students(ctx context.Context, filter domain.StudentFilter) ([]domain.Profile, error) {
	students, err := d.profiles.Students(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].FullName != students[j].FullName {
			return students[i].FullName < students[j].FullName
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

// Capabilities resolves the caller's permissions once; handlers pass the result down.
func (d *Directory) Capabilities(ctx context.Context, userID string) (domain.Capabilities, error) {
	profile, err := d.profiles.Profile(ctx, userID)
	if err != nil {
		return domain.Capabilities{}, err
	}
	return domain.CapabilitiesFor(profile), nil
}

// Names maps student ids to display names; missing profiles are simply absent.
func (d *Directory) Names(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	return d.profiles.Names(ctx, ids)
}
