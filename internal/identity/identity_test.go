package identity

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	id, err := iss.IssueAnonymous()
	if err != nil {
		t.Fatalf("IssueAnonymous: %v", err)
	}
	if id.ParticipantID == "" || id.Token == "" {
		t.Fatalf("incomplete identity %+v", id)
	}

	pid, err := iss.Parse(id.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pid != id.ParticipantID {
		t.Errorf("expected %s, got %s", id.ParticipantID, pid)
	}

	other, _ := iss.IssueAnonymous()
	if other.ParticipantID == id.ParticipantID {
		t.Error("participant ids should be unique")
	}
}

func TestParseRejects(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	id, _ := iss.IssueAnonymous()

	wrongKey, _ := NewIssuer("other", time.Hour)
	if _, err := wrongKey.Parse(id.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	if _, err := iss.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := iss.Parse(id.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); !errors.Is(err, ErrSecretMissing) {
		t.Errorf("expected ErrSecretMissing, got %v", err)
	}
}

func TestIssueRejectsMalformedID(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	if _, err := iss.Issue("not-a-uuid"); err == nil {
		t.Error("expected error for malformed participant id")
	}
}
