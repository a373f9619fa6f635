package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spec-kit/haf/internal/domain"
)

// CallRepository stores the single pending call.
type CallRepository interface {
	Load(ctx context.Context) (domain.CallRecord, error)
	Save(ctx context.Context, call domain.CallRecord) error
	Clear(ctx context.Context) error
}

type callRequired struct {
	UserID   string `json:"User_ID"`
	Contact  string `json:"Contact"`
	Hostname string `json:"Hostname"`
	CallType string `json:"Call_Type"`
}

type callOptional struct {
	Solution int    `json:"Solution"`
	Variable string `json:"Variable"`
}

type callFile struct {
	Required callRequired `json:"Required"`
	Optional callOptional `json:"Optional"`
}

type callRepository struct {
	path string
	mu   sync.Mutex
}

// NewCallRepository instantiates repository.
func NewCallRepository(path string) CallRepository {
	return &callRepository{path: path}
}

// Load returns the pending call. A missing file reads as a blank record.
func (r *callRepository) Load(ctx context.Context) (domain.CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var file callFile
	if err := readJSON(r.path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.BlankCall(), nil
		}
		return domain.CallRecord{}, fmt.Errorf("load call: %w", err)
	}
	return domain.CallRecord{
		UserID:   file.Required.UserID,
		Contact:  file.Required.Contact,
		Hostname: file.Required.Hostname,
		CallType: file.Required.CallType,
		Solution: file.Optional.Solution,
		Variable: file.Optional.Variable,
	}, nil
}

func (r *callRepository) Save(ctx context.Context, call domain.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file := callFile{
		Required: callRequired{
			UserID:   call.UserID,
			Contact:  call.Contact,
			Hostname: call.Hostname,
			CallType: call.CallType,
		},
		Optional: callOptional{
			Solution: call.Solution,
			Variable: call.Variable,
		},
	}
	if err := writeJSON(r.path, file); err != nil {
		return fmt.Errorf("save call: %w", err)
	}
	return nil
}

func (r *callRepository) Clear(ctx context.Context) error {
	return r.Save(ctx, domain.BlankCall())
}
