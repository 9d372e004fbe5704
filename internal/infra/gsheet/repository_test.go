package gsheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllRowsSkipsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/spreadsheets/sheet-id/values/Questions", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(valueRange{Values: [][]string{
			{"Question", "A", "B", "C", "D", "Correct"},
			{"What is a Sprint?", "1", "2", "3", "4", "b"},
			{"Who owns the backlog?", "1", "2", "3", "4", "a"},
		}})
	}))
	defer srv.Close()

	repo := New("sheet-id", "Questions", "token-123", WithBaseURL(srv.URL))

	rows, err := repo.ReadAllRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "What is a Sprint?", rows[0][0])
}

func TestReadAllRowsEmptySheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(valueRange{Values: [][]string{
			{"Question", "A", "B", "C", "D", "Correct"},
		}})
	}))
	defer srv.Close()

	repo := New("sheet-id", "Questions", "token", WithBaseURL(srv.URL))

	rows, err := repo.ReadAllRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendRowsAddressesContiguousRange(t *testing.T) {
	var gotPath, gotQuery string
	var gotBody valueRange

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	repo := New("sheet-id", "Questions", "token", WithBaseURL(srv.URL))

	rows := [][]string{
		{"Q1?", "a", "b", "c", "d", "a"},
		{"Q2?", "a", "b", "c", "d", "c"},
	}
	require.NoError(t, repo.AppendRows(context.Background(), rows, 12))

	assert.Equal(t, "/spreadsheets/sheet-id/values/Questions!A12:F13", gotPath)
	assert.Equal(t, "valueInputOption=RAW", gotQuery)
	assert.Equal(t, rows, gotBody.Values)
}

func TestAppendRowsNothingToDo(t *testing.T) {
	repo := New("sheet-id", "Questions", "token", WithBaseURL("http://unreachable.invalid"))
	assert.NoError(t, repo.AppendRows(context.Background(), nil, 2))
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	repo := New("sheet-id", "Questions", "token", WithBaseURL(srv.URL))

	_, err := repo.ReadAllRows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
