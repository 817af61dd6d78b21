package hygiene

import (
	"errors"
	"testing"

	"eshop-backend/pkg/push"
)

type fakeDirectory struct {
	recipients  []push.Recipient
	snapshotErr error
	cleared     []string
}

func (d *fakeDirectory) AllWithToken() ([]push.Recipient, error) {
	if d.snapshotErr != nil {
		return nil, d.snapshotErr
	}
	return d.recipients, nil
}

func (d *fakeDirectory) BulkClearTokens(userIDs []string) (int64, error) {
	d.cleared = append(d.cleared, userIDs...)
	return int64(len(userIDs)), nil
}

func TestRun_ClearsOnlyInvalidTokens(t *testing.T) {
	dir := &fakeDirectory{recipients: []push.Recipient{
		{UserID: "u1", Token: "has embedded space"},
		{UserID: "u2", Token: "perfectly-fine-token"},
	}}
	cleaner := NewCleaner(dir)

	cleared, err := cleaner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("cleared = %d, want 1", cleared)
	}
	if len(dir.cleared) != 1 || dir.cleared[0] != "u1" {
		t.Fatalf("cleared ids = %v, want exactly [u1]", dir.cleared)
	}
}

func TestRun_AllValidIsNormal(t *testing.T) {
	dir := &fakeDirectory{recipients: []push.Recipient{
		{UserID: "u1", Token: "token-a"},
		{UserID: "u2", Token: "token-b"},
	}}
	cleaner := NewCleaner(dir)

	cleared, err := cleaner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cleared != 0 {
		t.Fatalf("cleared = %d, want 0", cleared)
	}
	if len(dir.cleared) != 0 {
		t.Fatalf("BulkClearTokens called with %v, want no call", dir.cleared)
	}
}

func TestRun_PlaceholderTokens(t *testing.T) {
	dir := &fakeDirectory{recipients: []push.Recipient{
		{UserID: "u1", Token: "null"},
		{UserID: "u2", Token: "undefined"},
		{UserID: "u3", Token: ""},
	}}
	cleaner := NewCleaner(dir)

	cleared, err := cleaner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cleared != 3 {
		t.Fatalf("cleared = %d, want 3", cleared)
	}
}

func TestRun_DirectoryError(t *testing.T) {
	dir := &fakeDirectory{snapshotErr: errors.New("db down")}
	cleaner := NewCleaner(dir)

	if _, err := cleaner.Run(); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(dir.cleared) != 0 {
		t.Fatalf("cleared ids = %v, want none", dir.cleared)
	}
}
