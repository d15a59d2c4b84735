package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type fakeTab struct {
	id    int64
	title string
	rows  [][]any
}

// fakeSheets serves the subset of the Sheets v4 REST API the client uses
type fakeSheets struct {
	mu      sync.Mutex
	id      string
	tabs    []*fakeTab
	nextID  int64
	updates []string
}

func newFakeSheets(id string) *fakeSheets {
	return &fakeSheets{id: id, nextID: 100}
}

func (f *fakeSheets) addTab(title string, rows ...[]any) *fakeTab {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTab{id: int64(len(f.tabs)), title: title, rows: rows}
	f.tabs = append(f.tabs, t)
	return t
}

func (f *fakeSheets) tab(title string) *fakeTab {
	for _, t := range f.tabs {
		if t.title == title {
			return t
		}
	}
	return nil
}

func (f *fakeSheets) rows(title string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.tab(title); t != nil {
		return t.rows
	}
	return nil
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/v4/spreadsheets/" + f.id
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`))
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, prefix)

	switch {
	case rest == "" && r.Method == http.MethodGet:
		resp := &sheets.Spreadsheet{SpreadsheetId: f.id}
		for _, t := range f.tabs {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: t.id, Title: t.title}})
		}
		writeJSON(w, resp)

	case rest == ":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := &sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: f.id}
		for _, rq := range req.Requests {
			reply := &sheets.Response{}
			if rq.AddSheet != nil {
				t := &fakeTab{id: f.nextID, title: rq.AddSheet.Properties.Title}
				f.nextID++
				f.tabs = append(f.tabs, t)
				reply.AddSheet = &sheets.AddSheetResponse{Properties: &sheets.SheetProperties{SheetId: t.id, Title: t.title}}
			}
			if rq.DeleteDimension != nil {
				dr := rq.DeleteDimension.Range
				for _, t := range f.tabs {
					if t.id == dr.SheetId && int(dr.EndIndex) <= len(t.rows) {
						t.rows = append(t.rows[:dr.StartIndex], t.rows[dr.EndIndex:]...)
					}
				}
			}
			resp.Replies = append(resp.Replies, reply)
		}
		writeJSON(w, resp)

	case strings.HasPrefix(rest, "/values/"):
		rng := strings.TrimPrefix(rest, "/values/")
		appending := strings.HasSuffix(rng, ":append")
		rng = strings.TrimSuffix(rng, ":append")
		title, col, row, endRow := parseRange(rng)
		t := f.tab(title)
		if t == nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range"}}`))
			return
		}

		switch {
		case r.Method == http.MethodGet:
			rows := t.rows
			if row > 0 {
				rows = nil
				for i := row; i <= endRow && i <= len(t.rows); i++ {
					rows = append(rows, t.rows[i-1])
				}
			}
			writeJSON(w, &sheets.ValueRange{Range: rng, Values: rows})
		case appending:
			var vr sheets.ValueRange
			json.NewDecoder(r.Body).Decode(&vr)
			t.rows = append(t.rows, vr.Values...)
			writeJSON(w, &sheets.AppendValuesResponse{SpreadsheetId: f.id})
		case r.Method == http.MethodPut:
			var vr sheets.ValueRange
			json.NewDecoder(r.Body).Decode(&vr)
			f.updates = append(f.updates, rng)
			for i, values := range vr.Values {
				idx := row - 1 + i
				for len(t.rows) <= idx {
					t.rows = append(t.rows, []any{})
				}
				for len(t.rows[idx]) < col+len(values) {
					t.rows[idx] = append(t.rows[idx], "")
				}
				copy(t.rows[idx][col:], values)
			}
			writeJSON(w, &sheets.UpdateValuesResponse{SpreadsheetId: f.id})
		}

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

// parseRange splits 'Tab'!B3:D3 into the title, 0-based start column and
// 1-based row bounds. Rows are 0 for whole-column ranges.
func parseRange(rng string) (title string, col, row, endRow int) {
	i := strings.LastIndex(rng, "!")
	title = strings.ReplaceAll(strings.Trim(rng[:i], "'"), "''", "'")
	parts := strings.Split(rng[i+1:], ":")

	start := parts[0]
	col = int(start[0] - 'A')
	row, _ = strconv.Atoi(start[1:])
	endRow = row
	if len(parts) > 1 && len(parts[1]) > 1 {
		endRow, _ = strconv.Atoi(parts[1][1:])
	}
	return title, col, row, endRow
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeSheets, spreadsheetID string) (*Client, error) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewWithOptions(context.Background(), spreadsheetID,
		Tabs{Positions: "Acoes", Quotes: "Cotacoes", Options: "Opcoes"}, nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
}

func mustClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	c, err := newTestClient(t, fake, fake.id)
	require.NoError(t, err)
	return c
}
