package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendlog/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sid")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sid")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/definitely/not/here.json")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows([]core.Transaction{
		{ID: "1", Type: core.Expense, Title: "Lunch", Amount: core.MustAmount("12.5"), Date: "2025-01-02", Category: core.CategoryFood, Description: "team"},
		{ID: "2", Type: core.Income, Title: "Pay", Amount: core.MustAmount("100"), Date: "2025-01-01", Category: core.CategorySalary},
	})

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][5] != "Description" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	want := []interface{}{"2025-01-02", "expense", "Lunch", "food", "12.50", "team"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("cell %d: expected %v, got %v", i, v, rows[1][i])
		}
	}
	if rows[2][5] != "" {
		t.Fatalf("expected empty description, got %v", rows[2][5])
	}
}

func TestClient_ExportClearsThenWrites(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	var written gsheet.ValueRange

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			calls = append(calls, "clear")
		case r.Method == http.MethodPut:
			calls = append(calls, "update")
			if got := r.URL.Query().Get("valueInputOption"); got != "RAW" {
				t.Errorf("unexpected valueInputOption %q", got)
			}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &written); err != nil {
				t.Errorf("decode body: %v", err)
			}
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	c := New(svc, "sid", "")
	err = c.Export(context.Background(), []core.Transaction{
		{ID: "1", Type: core.Expense, Title: "=IMPORTXML(\"http://x\",\"//a\")", Amount: core.MustAmount("3"), Date: "2025-01-02", Category: core.CategoryFood},
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if strings.Join(calls, ",") != "clear,update" {
		t.Fatalf("unexpected call order: %v", calls)
	}
	if len(written.Values) != 2 || written.Values[1][4] != "3.00" {
		t.Fatalf("unexpected values written: %v", written.Values)
	}
	if written.Values[1][2] != `=IMPORTXML("http://x","//a")` {
		t.Fatalf("title should be written verbatim, got %v", written.Values[1][2])
	}
}
