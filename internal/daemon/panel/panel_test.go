package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-io/hearth/internal/models"
)

type fakeReader struct {
	selected []models.EntitySnapshot
	all      []models.EntitySnapshot
	stale    bool
}

func (f *fakeReader) List() []models.EntitySnapshot { return f.selected }
func (f *fakeReader) All() []models.EntitySnapshot  { return f.all }
func (f *fakeReader) Ready() bool                   { return true }
func (f *fakeReader) Stale() bool                   { return f.stale }
func (f *fakeReader) LastRefresh() time.Time        { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }

type fakeToggler struct {
	toggled []string
	err     error
}

func (f *fakeToggler) Toggle(ctx context.Context, entityID string) error {
	f.toggled = append(f.toggled, entityID)
	return f.err
}

type fakeRefresher struct {
	refreshed int
	err       error
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.err
}

func testPanel(reader *fakeReader, toggler *fakeToggler, refresher *fakeRefresher) *httptest.Server {
	p := New(reader, toggler, refresher, "", zerolog.Nop())
	return httptest.NewServer(p)
}

func entityFixtures() *fakeReader {
	kitchen := models.EntitySnapshot{EntityID: "light.kitchen", FriendlyName: "Kitchen Light", State: "on"}
	fan := models.EntitySnapshot{EntityID: "switch.fan", FriendlyName: "Ceiling Fan", State: "off"}
	office := models.EntitySnapshot{EntityID: "light.office", FriendlyName: "Office Light", State: "off"}
	return &fakeReader{
		selected: []models.EntitySnapshot{kitchen, fan},
		all:      []models.EntitySnapshot{fan, kitchen, office},
	}
}

func decodeEntities(t *testing.T, resp *http.Response) entitiesResponse {
	t.Helper()
	defer resp.Body.Close()
	var out entitiesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestEntitiesReturnsSelection(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/entities")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeEntities(t, resp)
	require.Len(t, out.Entities, 2)
	assert.Equal(t, "light.kitchen", out.Entities[0].EntityID)
	assert.Equal(t, "switch.fan", out.Entities[1].EntityID)
	assert.False(t, out.Stale)
}

func TestEntitiesSearchFiltersAll(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/entities?q=light")
	require.NoError(t, err)
	out := decodeEntities(t, resp)

	require.Len(t, out.Entities, 2, "search runs across all entities, not just the selection")
	for _, entity := range out.Entities {
		assert.True(t, strings.Contains(strings.ToLower(entity.FriendlyName), "light") ||
			strings.Contains(entity.EntityID, "light"))
	}
}

func TestEntitiesSearchNoMatches(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/entities?q=zzz")
	require.NoError(t, err)
	out := decodeEntities(t, resp)
	assert.NotNil(t, out.Entities)
	assert.Empty(t, out.Entities)
}

func TestEntitiesReportsStale(t *testing.T) {
	reader := entityFixtures()
	reader.stale = true
	server := testPanel(reader, &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/entities")
	require.NoError(t, err)
	out := decodeEntities(t, resp)
	assert.True(t, out.Stale)
	assert.False(t, out.LastRefresh.IsZero())
}

func TestToggleEndpoint(t *testing.T) {
	toggler := &fakeToggler{}
	server := testPanel(entityFixtures(), toggler, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/entities/light.kitchen/toggle", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"light.kitchen"}, toggler.toggled)
}

func TestToggleFailureIsBadGateway(t *testing.T) {
	toggler := &fakeToggler{err: errors.New("hub unreachable")}
	server := testPanel(entityFixtures(), toggler, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/entities/light.kitchen/toggle", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestToggleUnknownAction(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/entities/light.kitchen/dance", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRefreshEndpoint(t *testing.T) {
	refresher := &fakeRefresher{}
	server := testPanel(entityFixtures(), &fakeToggler{}, refresher)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/refresh", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, refresher.refreshed)
}

func TestMethodNotAllowed(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/entities", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/v1/refresh")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out["ok"])
	assert.True(t, out["ready"])
}

func TestIndexServesPage(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestUnknownPathIs404(t *testing.T) {
	server := testPanel(entityFixtures(), &fakeToggler{}, &fakeRefresher{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
