package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"docvault/internal/config"
	"docvault/internal/domain/commonModels"
	"docvault/internal/rag"
	"docvault/internal/rag/gate"
	"docvault/internal/storagepath"
)

func newTestService(t *testing.T, v *MockVectorDB, l *MockLLM, e *MockEmbedder) rag.Service {
	t.Helper()
	return rag.NewService(v, l, e, gate.New(), storagepath.NewManager(t.TempDir()))
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedAnswer string
		expectedErr    error
		wantErr        bool
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q, c string) (string, error) {
					return "final answer", nil
				}
			},
			expectedAnswer: "final answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			wantErr: true,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, vec []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
					return nil, errors.New("db timeout")
				}
			},
			wantErr: true,
		},
		{
			name: "No_Documents_Is_Sentinel",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, vec []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
					return nil, nil
				}
			},
			expectedErr: rag.ErrNoDocuments,
			wantErr:     true,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q, c string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := newTestService(t, mVec, mLLM, mEmbed)

			result, err := s.Answer(testCtx(), "test question", "owner-1")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
					t.Errorf("error = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.Answer, tt.expectedAnswer)
			}
		})
	}
}

func TestAnswer_SearchIsTenantScoped(t *testing.T) {
	var searchedOwner string
	var searchedLimit uint64
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
			searchedOwner = ownerID
			searchedLimit = limit
			return []commonModels.ChunkRecord{{Filename: "doc", OwnerID: ownerID, Content: "x"}}, nil
		},
	}
	s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{})

	if _, err := s.Answer(testCtx(), "q", "owner-42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searchedOwner != "owner-42" {
		t.Errorf("search ran for owner %q, want owner-42", searchedOwner)
	}
	if searchedLimit != config.QueryTopK {
		t.Errorf("search limit = %d, want %d", searchedLimit, config.QueryTopK)
	}
}

func TestAnswer_SourcesAreDeduplicated(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
			return []commonModels.ChunkRecord{
				{Filename: "report", Content: "a"},
				{Filename: "notes", Content: "b"},
				{Filename: "report", Content: "c"},
			}, nil
		},
	}
	s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{})

	result, err := s.Answer(testCtx(), "q", "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Sources) != 2 || result.Sources[0] != "report" || result.Sources[1] != "notes" {
		t.Errorf("sources = %v, want [report notes]", result.Sources)
	}
}

func TestAnswer_SnippetsAreTruncated(t *testing.T) {
	huge := strings.Repeat("z", config.SnippetMaxChars+500)
	var promptContext string
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
			return []commonModels.ChunkRecord{{Filename: "big", Content: huge}}, nil
		},
	}
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, q, c string) (string, error) {
		promptContext = c
		return "ok", nil
	}}
	s := newTestService(t, mVec, mLLM, &MockEmbedder{})

	if _, err := s.Answer(testCtx(), "q", "owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(promptContext, huge) {
		t.Error("prompt contains the untruncated chunk")
	}
	if !strings.Contains(promptContext, huge[:config.SnippetMaxChars]) {
		t.Error("prompt is missing the truncated snippet")
	}
}

func TestAnswer_SnippetTruncationKeepsRunesIntact(t *testing.T) {
	huge := strings.Repeat("é", config.SnippetMaxChars+500)
	var promptContext string
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32, ownerID string, limit uint64) ([]commonModels.ChunkRecord, error) {
			return []commonModels.ChunkRecord{{Filename: "accents", Content: huge}}, nil
		},
	}
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, q, c string) (string, error) {
		promptContext = c
		return "ok", nil
	}}
	s := newTestService(t, mVec, mLLM, &MockEmbedder{})

	if _, err := s.Answer(testCtx(), "q", "owner-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(promptContext) {
		t.Error("prompt contains invalid UTF-8 after truncation")
	}
	truncated := string([]rune(huge)[:config.SnippetMaxChars])
	if !strings.Contains(promptContext, truncated) {
		t.Error("prompt is missing the rune-truncated snippet")
	}
	if strings.Contains(promptContext, huge) {
		t.Error("prompt contains the untruncated chunk")
	}
}

func TestDeleteDocument_Scenarios(t *testing.T) {
	t.Run("Success_Removes_And_Compacts", func(t *testing.T) {
		var calls []string
		mVec := &MockVectorDB{
			OnDelete: func(ctx context.Context, docID, ownerID string) error {
				calls = append(calls, "delete "+docID+" "+ownerID)
				return nil
			},
			OnCompact: func(ctx context.Context) error {
				calls = append(calls, "compact")
				return nil
			},
		}
		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{})

		result := s.DeleteDocument(testCtx(), "report", "owner-1")
		if !result.Success {
			t.Fatalf("delete failed: %s", result.Message)
		}
		if result.Message != "Successfully deleted document: report" {
			t.Errorf("message = %q", result.Message)
		}
		if len(calls) != 2 || calls[0] != "delete report owner-1" || calls[1] != "compact" {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("Missing_Document_Is_Success", func(t *testing.T) {
		// deleting by filter matches nothing; still reported as deleted
		s := newTestService(t, &MockVectorDB{}, &MockLLM{}, &MockEmbedder{})
		result := s.DeleteDocument(testCtx(), "ghost", "owner-1")
		if !result.Success {
			t.Errorf("expected success for missing document, got %q", result.Message)
		}
	})

	t.Run("Store_Failure_Is_Reported", func(t *testing.T) {
		mVec := &MockVectorDB{
			OnDelete: func(ctx context.Context, docID, ownerID string) error {
				return errors.New("connection refused")
			},
		}
		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{})
		result := s.DeleteDocument(testCtx(), "report", "owner-1")
		if result.Success {
			t.Error("expected failure result")
		}
		if !strings.Contains(result.Message, "Failed to delete document") {
			t.Errorf("message = %q", result.Message)
		}
	})
}

func TestResetKnowledgeBase_Scenarios(t *testing.T) {
	t.Run("Success_Full_Sequence", func(t *testing.T) {
		var calls []string
		mVec := &MockVectorDB{
			OnOwnerFilepaths: func(ctx context.Context, ownerID string) ([]string, error) {
				calls = append(calls, "paths "+ownerID)
				return nil, nil
			},
			OnDeleteOwner: func(ctx context.Context, ownerID string) error {
				calls = append(calls, "deleteOwner "+ownerID)
				return nil
			},
			OnCompact: func(ctx context.Context) error {
				calls = append(calls, "compact")
				return nil
			},
			OnPurgeHistory: func(ctx context.Context) error {
				calls = append(calls, "purge")
				return nil
			},
		}
		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{})

		result := s.ResetKnowledgeBase(testCtx(), "owner-1")
		if !result.Success {
			t.Fatalf("reset failed: %s", result.Message)
		}
		if result.Message != "Knowledge base has been completely reset" {
			t.Errorf("message = %q", result.Message)
		}
		want := []string{"paths owner-1", "deleteOwner owner-1", "compact", "purge"}
		if len(calls) != len(want) {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Fatalf("call %d = %q, want %q", i, calls[i], want[i])
			}
		}
	})

	t.Run("Purge_Failure_Is_Reported", func(t *testing.T) {
		mVec := &MockVectorDB{
			OnPurgeHistory: func(ctx context.Context) error {
				return errors.New("snapshot api down")
			},
		}
		s := newTestService(t, mVec, &MockLLM{}, &MockEmbedder{})
		result := s.ResetKnowledgeBase(testCtx(), "owner-1")
		if result.Success {
			t.Error("expected failure result")
		}
	})
}
