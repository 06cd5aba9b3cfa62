package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lurraldea/geopoint/internal/core/domain"
	"github.com/lurraldea/geopoint/internal/core/usecases"
)

type stubLocationRepo struct {
	info   *domain.LocationInfo
	status *domain.DatasetStatus
}

func (s *stubLocationRepo) ResolvePoint(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
	return s.info, nil
}

func (s *stubLocationRepo) Status(ctx context.Context) (*domain.DatasetStatus, error) {
	return s.status, nil
}

func testApp(repo *stubLocationRepo) *fiber.App {
	deps := &Dependencies{
		Resolver: usecases.NewResolveService(repo, nil),
	}
	app := fiber.New()
	app.Get("/v1/resolve", ResolveHandler(deps))
	app.Get("/v1/status", StatusHandler(deps))
	return app
}

func TestResolveHandler(t *testing.T) {
	app := testApp(&stubLocationRepo{
		info: &domain.LocationInfo{
			Country:       "Spain",
			CountryAlpha2: "ES",
			Region:        "Bizkaia",
			City:          "Bilbao",
		},
	})

	req := httptest.NewRequest("GET", "/v1/resolve?lat=43.263&lon=-2.935", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var info domain.LocationInfo
	if err := json.Unmarshal(body, &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info.City != "Bilbao" || info.CountryAlpha2 != "ES" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestResolveHandler_BadInput(t *testing.T) {
	app := testApp(&stubLocationRepo{info: &domain.LocationInfo{}})

	for _, target := range []string{
		"/v1/resolve",                    // missing both
		"/v1/resolve?lat=43.2",           // missing lon
		"/v1/resolve?lat=abc&lon=-2.9",   // not a number
		"/v1/resolve?lat=91&lon=0",       // out of range
		"/v1/resolve?lat=43.2&lon=180.5", // out of range
	} {
		req := httptest.NewRequest("GET", target, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: request failed: %v", target, err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", target, resp.StatusCode)
		}
	}
}

func TestStatusHandler(t *testing.T) {
	app := testApp(&stubLocationRepo{
		status: &domain.DatasetStatus{Countries: 195, Regions: 4596, Cities: 7343},
	})

	req := httptest.NewRequest("GET", "/v1/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var st domain.DatasetStatus
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if st.Countries != 195 || st.Cities != 7343 {
		t.Errorf("unexpected body: %s", body)
	}
}
