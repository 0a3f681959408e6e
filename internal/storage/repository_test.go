package storage

import (
	"context"
	"strings"
	"testing"
)

func TestRegisterAndNew(t *testing.T) {
	var gotCfg Config
	Register("fake_for_test", func(_ context.Context, cfg Config) (Repository, error) {
		gotCfg = cfg
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake_for_test", DSN: "mem"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()
	if gotCfg.DSN != "mem" {
		t.Fatalf("factory got DSN %q, want mem", gotCfg.DSN)
	}

	found := false
	for _, k := range Kinds() {
		if k == "fake_for_test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Kinds() = %v, missing fake_for_test", Kinds())
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("duplicate Register did not panic")
			}
		}()
		Register("fake_for_test", func(context.Context, Config) (Repository, error) { return nil, nil })
	}()
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "oracle"})
	if err == nil || !strings.Contains(err.Error(), `unknown kind "oracle"`) {
		t.Fatalf("New(oracle) err = %v", err)
	}
}
