package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StagedMedia holds uploaded image bytes under short-lived handles so the
// ingestion pipeline can read them through its usual media port.
type StagedMedia struct {
	files sync.Map // map[string][]byte
}

func NewStagedMedia() *StagedMedia {
	return &StagedMedia{}
}

// Stage stores the bytes and returns a handle for them.
func (m *StagedMedia) Stage(data []byte) string {
	handle := uuid.New().String()
	m.files.Store(handle, data)
	return handle
}

// Release drops a staged file. Safe to call for unknown handles.
func (m *StagedMedia) Release(handle string) {
	m.files.Delete(handle)
}

// RequestAccess always grants; the bytes are already server-side.
func (m *StagedMedia) RequestAccess(ctx context.Context) error {
	return nil
}

func (m *StagedMedia) Read(ctx context.Context, handle string) ([]byte, error) {
	val, ok := m.files.Load(handle)
	if !ok {
		return nil, fmt.Errorf("unknown media handle: %s", handle)
	}
	return val.([]byte), nil
}
