package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title == "" {
		t.Fatal("swagger info missing title")
	}
}

func TestSwaggerDocDescribesDashboardAPI(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths               map[string]map[string]json.RawMessage `json:"paths"`
		SecurityDefinitions map[string]struct {
			Name string `json:"name"`
			In   string `json:"in"`
		} `json:"securityDefinitions"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if doc.Info.Title != SwaggerInfo.Title {
		t.Fatalf("expected title %q, got %q", SwaggerInfo.Title, doc.Info.Title)
	}
	for _, path := range []string{"/api/stock", "/health"} {
		if _, ok := doc.Paths[path]["get"]; !ok {
			t.Fatalf("expected GET %s in doc", path)
		}
	}
	auth, ok := doc.SecurityDefinitions["ApiKeyAuth"]
	if !ok || auth.Name != "X-API-Key" || auth.In != "header" {
		t.Fatalf("unexpected api key definition: %+v", doc.SecurityDefinitions)
	}
}
