package workspace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQueryDatabaseFollowsPagination(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/databases/db-1/query" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("Notion-Version = %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if calls == 1 {
			if _, ok := body["filter"]; !ok {
				t.Error("first request missing filter")
			}
			json.NewEncoder(w).Encode(map[string]any{
				"results":     []map[string]any{{"id": "page-1"}},
				"has_more":    true,
				"next_cursor": "cur-2",
			})
			return
		}
		if body["start_cursor"] != "cur-2" {
			t.Errorf("start_cursor = %v", body["start_cursor"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results":  []map[string]any{{"id": "page-2"}},
			"has_more": false,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", "")
	pages, err := client.QueryDatabase(context.Background(), "db-1", FilterRichTextEquals("Task ID", "X_TASK_001"))
	if err != nil {
		t.Fatalf("QueryDatabase: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != "page-1" || pages[1].ID != "page-2" {
		t.Fatalf("pages = %+v", pages)
	}
}

func TestQueryDatabasePropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"ratelimited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", "")
	if _, err := client.QueryDatabase(context.Background(), "db-1", nil); err == nil {
		t.Fatal("expected error from rate-limited query")
	}
}

func TestCreatePageSendsParentAndProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Parent     map[string]string   `json:"parent"`
			Properties map[string]Property `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Parent["database_id"] != "db-1" {
			t.Errorf("parent = %v", body.Parent)
		}
		if body.Properties["Name"].PlainText() != "Fix the thing" {
			t.Errorf("title = %q", body.Properties["Name"].PlainText())
		}
		json.NewEncoder(w).Encode(Page{ID: "page-9"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", "")
	page, err := client.CreatePage(context.Background(), "db-1", map[string]Property{
		"Name":   TitleProp("Fix the thing"),
		"Status": SelectProp("Complete"),
	})
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if page.ID != "page-9" {
		t.Fatalf("page = %+v", page)
	}
}

func TestUpdatePagePatchesProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/pages/page-9" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(Page{ID: "page-9"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", "")
	if _, err := client.UpdatePage(context.Background(), "page-9", map[string]Property{
		"Status": SelectProp("Complete"),
	}); err != nil {
		t.Fatalf("UpdatePage: %v", err)
	}
}

func TestPropertyAccessors(t *testing.T) {
	raw := `{
		"id": "page-1",
		"properties": {
			"Name": {"type": "title", "title": [{"plain_text": "Episode 7"}]},
			"Task ID": {"type": "rich_text", "rich_text": [{"text": {"content": "X_TASK_001"}}]},
			"Episode Number": {"type": "number", "number": 7},
			"Status": {"type": "select", "select": {"name": "Complete"}},
			"Recording Date": {"type": "date", "date": {"start": "2026-01-05"}},
			"Audio": {"type": "url", "url": "https://example.com/a.mp3"},
			"Episode Live": {"type": "checkbox", "checkbox": true}
		}
	}`
	var page Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Text("Name") != "Episode 7" {
		t.Errorf("Name = %q", page.Text("Name"))
	}
	if page.Text("Task ID") != "X_TASK_001" {
		t.Errorf("Task ID = %q", page.Text("Task ID"))
	}
	if page.Properties["Episode Number"].NumberValue() != 7 {
		t.Errorf("number = %v", page.Properties["Episode Number"].NumberValue())
	}
	if page.Properties["Status"].SelectName() != "Complete" {
		t.Errorf("select = %q", page.Properties["Status"].SelectName())
	}
	if page.Properties["Recording Date"].DateStart() != "2026-01-05" {
		t.Errorf("date = %q", page.Properties["Recording Date"].DateStart())
	}
	if page.Properties["Audio"].URL != "https://example.com/a.mp3" {
		t.Errorf("url = %q", page.Properties["Audio"].URL)
	}
	if !page.Properties["Episode Live"].CheckboxValue() {
		t.Error("checkbox should be true")
	}
	if page.Text("Missing") != "" {
		t.Error("missing property should read empty")
	}
}
