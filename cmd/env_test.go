package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/segment"
	"github.com/sells-group/lead-scout/internal/sink"
)

// withConfig installs c as the global config for the duration of the test.
func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Store.DatabaseURL = filepath.Join(t.TempDir(), "scout.db")
	c.Pipeline.Concurrency = 2
	c.Apify.PageLimit = 2
	c.Apify.Zoom = 14
	return c
}

func TestLoadCampaign_Default(t *testing.T) {
	withConfig(t, testConfig(t))

	c, err := loadCampaign()
	require.NoError(t, err)
	assert.Equal(t, segment.DefaultCampaignName, c.Name)

	cfg.Campaign.Name = "plumbing"
	_, err = loadCampaign()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs campaign.templates_path")
}

func TestLoadCampaign_FromFile(t *testing.T) {
	withConfig(t, testConfig(t))

	path := filepath.Join(t.TempDir(), "plumbing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: plumbing
elite: "Hi {name}, top plumber in {city}?"
growth: "Hi {name}, plumbers in {city} are missing calls."
`), 0o600))
	cfg.Campaign.TemplatesPath = path

	c, err := loadCampaign()
	require.NoError(t, err)
	assert.Equal(t, "plumbing", c.Name)

	cfg.Campaign.Name = "roofing"
	_, err = loadCampaign()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestInitStore_UnknownDriver(t *testing.T) {
	c := testConfig(t)
	c.Store.Driver = "mysql"
	withConfig(t, c)

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitScout_Offline(t *testing.T) {
	withConfig(t, testConfig(t))
	ctx := context.Background()

	env, err := initScout(ctx, false)
	require.NoError(t, err)
	defer env.Close()

	records := []model.RawRecord{
		{"title": "Ace Elite", "totalScore": 5.0, "phone": "(214) 555-0100"},
		{"title": "Hotline Co", "totalScore": 4.5, "phone": "800-555-0111"},
	}
	run, err := env.Service.Process(ctx, model.ScanQuery{SearchTerm: "Roofing", Location: "Dallas"}, records)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.Equal(t, 1, run.Result.Len())
	assert.Equal(t, model.TierElite, run.Result.Leads[0].Tier)

	stored, err := env.Store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, pushable(stored))
}

func TestInitSinks_Validation(t *testing.T) {
	withConfig(t, testConfig(t))

	_, err := initSinks(true, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")

	cfg.Notion.Token = "ntn_token"
	cfg.Notion.LeadDB = "lead-db"
	sinks, err := initSinks(true, false)
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.IsType(t, &sink.NotionSink{}, sinks[0])

	_, err = initSinks(false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.client_id is required")
}

func TestPushable(t *testing.T) {
	assert.False(t, pushable(nil))
	run := sampleRun()
	assert.True(t, pushable(run))
	run.Status = model.RunStatusEmpty
	assert.False(t, pushable(run))
}
