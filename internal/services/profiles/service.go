package profiles

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("profile not found")
)

type Service struct {
	now    func() time.Time
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		now:    time.Now,
		logger: logger,
	}
}

// List returns profiles for display. End users only see visible ones.
func (s *Service) List(doc *model.Document, includeHidden bool) []model.Profile {
	out := make([]model.Profile, 0, len(doc.Profiles))
	for _, p := range doc.Profiles {
		if !includeHidden && !p.Visible {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) Get(doc *model.Document, id int64) (*model.Profile, error) {
	p := doc.ProfileByID(id)
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

type CreateInput struct {
	Name        string
	Age         int
	Gender      string
	City        string
	Description string
	Photos      []string
	Visible     bool
}

func (s *Service) Create(doc *model.Document, in CreateInput) (*model.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation
	}

	age := in.Age
	if age <= 0 {
		age = doc.Settings.App.DefaultAge
	}
	city := strings.TrimSpace(in.City)
	if city == "" {
		city = doc.Settings.App.DefaultCity
	}

	profile := model.Profile{
		ID:          doc.NextProfileID(),
		Name:        name,
		Age:         age,
		Gender:      strings.TrimSpace(in.Gender),
		City:        city,
		Description: strings.TrimSpace(in.Description),
		Photos:      append([]string{}, in.Photos...),
		Visible:     in.Visible,
		CreatedAt:   s.now(),
	}
	doc.Profiles = append(doc.Profiles, profile)

	s.logger.Info("profile created", zap.Int64("profile_id", profile.ID), zap.String("name", profile.Name))
	return &doc.Profiles[len(doc.Profiles)-1], nil
}

func (s *Service) SetVisible(doc *model.Document, id int64, visible bool) error {
	p := doc.ProfileByID(id)
	if p == nil {
		return ErrProfileNotFound
	}
	p.Visible = visible
	return nil
}

// Delete removes the profile and cascades: its chats, those chats'
// messages, and its comments all go with it.
func (s *Service) Delete(doc *model.Document, id int64) error {
	if doc.ProfileByID(id) == nil {
		return ErrProfileNotFound
	}

	profiles := doc.Profiles[:0]
	for _, p := range doc.Profiles {
		if p.ID != id {
			profiles = append(profiles, p)
		}
	}
	doc.Profiles = profiles

	removedChats := make(map[int64]bool)
	chats := doc.Chats[:0]
	for _, c := range doc.Chats {
		if c.ProfileID == id {
			removedChats[c.ID] = true
			continue
		}
		chats = append(chats, c)
	}
	doc.Chats = chats

	messages := doc.Messages[:0]
	for _, m := range doc.Messages {
		if !removedChats[m.ChatID] {
			messages = append(messages, m)
		}
	}
	doc.Messages = messages

	comments := doc.Comments[:0]
	for _, c := range doc.Comments {
		if c.ProfileID != id {
			comments = append(comments, c)
		}
	}
	doc.Comments = comments

	s.logger.Info("profile deleted with cascade",
		zap.Int64("profile_id", id),
		zap.Int("chats_removed", len(removedChats)),
	)
	return nil
}

func (s *Service) CommentsFor(doc *model.Document, profileID int64) []model.Comment {
	out := make([]model.Comment, 0)
	for _, c := range doc.Comments {
		if c.ProfileID == profileID {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) AddComment(doc *model.Document, profileID int64, author, text string) (*model.Comment, error) {
	if doc.ProfileByID(profileID) == nil {
		return nil, ErrProfileNotFound
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidation
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = "Anonymous"
	}

	comment := model.Comment{
		ID:        doc.NextCommentID(),
		ProfileID: profileID,
		Author:    author,
		Text:      text,
		CreatedAt: s.now(),
	}
	doc.Comments = append(doc.Comments, comment)
	return &doc.Comments[len(doc.Comments)-1], nil
}
