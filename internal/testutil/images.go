package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"oneps/internal/domain"
)

// Images 内存版对象存储，记录存入和删除的对象
type Images struct {
	mu      sync.Mutex
	n       int
	Objects map[string]bool
	Deleted []string
	PutErr  error
}

func NewImages() *Images { return &Images{Objects: map[string]bool{}} }

func (m *Images) Put(_ context.Context, _ string, body io.Reader, _ int64) (domain.StoredImage, error) {
	if m.PutErr != nil {
		return domain.StoredImage{}, m.PutErr
	}
	_, _ = io.Copy(io.Discard, body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	id := fmt.Sprintf("1PS_uploads/imageFile-%d", m.n)
	m.Objects[id] = true
	return domain.StoredImage{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (m *Images) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, publicID)
	m.Deleted = append(m.Deleted, publicID)
	return nil
}
