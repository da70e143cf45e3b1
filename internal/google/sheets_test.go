package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func newMockService(t *testing.T, mux *http.ServeMux) *SheetsService {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("create sheets service: %v", err)
	}
	return &SheetsService{
		service:       srv,
		spreadsheetID: "test_sid",
		bookingsSheet: "Rations",
		namelistSheet: "Namelist",
	}
}

func TestSheetsService_WithMockAPI(t *testing.T) {
	mux := http.NewServeMux()
	s := newMockService(t, mux)
	ctx := context.Background()

	t.Run("TestConnection", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/test_sid/values/Namelist!A1", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"Name"}}})
		})
		if err := s.TestConnection(ctx); err != nil {
			t.Errorf("TestConnection failed: %v", err)
		}
	})

	t.Run("ReadBookingRows", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/test_sid/values/Rations!B2:K", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{
				{"2025-06-16", "2025-06-16", "Alice", "vi", "1", "0", "0", "ACTIVE", "ts", "ts"},
			}})
		})
		rows, err := s.ReadBookingRows(ctx)
		if err != nil {
			t.Fatalf("ReadBookingRows failed: %v", err)
		}
		if len(rows) != 1 || rows[0][2] != "Alice" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})

	t.Run("BatchUpdateRows", func(t *testing.T) {
		var body sheets.BatchUpdateValuesRequest
		mux.HandleFunc("/v4/spreadsheets/test_sid/values:batchUpdate", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(sheets.BatchUpdateValuesResponse{})
		})
		err := s.BatchUpdateRows(ctx, []RowUpdate{
			{Row: 7, Values: []interface{}{"2025-06-16", "2025-06-17", "Alice", "vi", 0, 1, 0, "ACTIVE", "ts", "ts"}},
		})
		if err != nil {
			t.Fatalf("BatchUpdateRows failed: %v", err)
		}
		if body.ValueInputOption != "USER_ENTERED" {
			t.Errorf("ValueInputOption = %q, want USER_ENTERED", body.ValueInputOption)
		}
		if len(body.Data) != 1 || body.Data[0].Range != "Rations!B7:K7" {
			t.Errorf("unexpected update data: %+v", body.Data)
		}
	})

	t.Run("AppendRowsAfterFirstEmpty", func(t *testing.T) {
		keyMux := http.NewServeMux()
		s2 := newMockService(t, keyMux)

		// Three existing key cells, so appends start at row 5.
		keyMux.HandleFunc("/v4/spreadsheets/test_sid/values/Rations!B2:B", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{
				{"2025-06-09"}, {"2025-06-09"}, {"2025-06-16"},
			}})
		})

		var body sheets.BatchUpdateValuesRequest
		keyMux.HandleFunc("/v4/spreadsheets/test_sid/values:batchUpdate", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(sheets.BatchUpdateValuesResponse{})
		})

		rows := [][]interface{}{
			{"2025-06-16", "2025-06-17", "Bob", "m", 1, 1, 0, "ACTIVE", "ts", "ts"},
			{"2025-06-16", "2025-06-18", "Bob", "m", 0, 0, 0, "CANCELLED", "ts", "ts"},
		}
		if err := s2.AppendRows(ctx, rows); err != nil {
			t.Fatalf("AppendRows failed: %v", err)
		}
		if len(body.Data) != 2 {
			t.Fatalf("expected 2 ranges, got %d", len(body.Data))
		}
		if body.Data[0].Range != "Rations!B5:K5" || body.Data[1].Range != "Rations!B6:K6" {
			t.Errorf("unexpected append ranges: %s, %s", body.Data[0].Range, body.Data[1].Range)
		}
	})

	t.Run("AppendRowsEmptyInput", func(t *testing.T) {
		// No handler registered beyond the shared mux; zero rows must not
		// touch the API at all.
		if err := s.AppendRows(ctx, nil); err != nil {
			t.Errorf("AppendRows(nil) = %v", err)
		}
	})

	t.Run("ReadNamelist", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/test_sid/values/Namelist!A2:A", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"Alice"}, {"Bob"}}})
		})
		rows, err := s.ReadNamelist(ctx)
		if err != nil {
			t.Fatalf("ReadNamelist failed: %v", err)
		}
		if len(rows) != 2 || rows[0][0] != "Alice" || rows[1][0] != "Bob" {
			t.Errorf("unexpected namelist: %v", rows)
		}
	})

	t.Run("NamelistCacheKey", func(t *testing.T) {
		if got := s.NamelistCacheKey(); got != "test_sid:Namelist:A2:A" {
			t.Errorf("NamelistCacheKey = %q", got)
		}
	})
}
