package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/config"
	"github.com/san-kum/atomsim/internal/driver"
	"github.com/san-kum/atomsim/internal/viz"
)

func TestCommandsToSVG(t *testing.T) {
	cmds := []atomic.DrawCommand{
		{Kind: atomic.DrawLink, From: atomic.Vec2{X: 1, Y: 2}, To: atomic.Vec2{X: 3, Y: 4}, Color: atomic.RGBA{R: 200, G: 0, B: 155, A: 0.25}},
		{Kind: atomic.DrawAtom, Center: atomic.Vec2{X: 10, Y: 20}, Radius: 2, Color: atomic.RGBA{R: 155, G: 0, B: 255, A: 0.5}},
	}
	svg := CommandsToSVG(cmds, 800, 600, "")

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `width="800" height="600"`)
	assert.Contains(t, svg, `fill="`+DefaultBackground+`"`)
	assert.Contains(t, svg, `<line x1="1.00" y1="2.00" x2="3.00" y2="4.00" stroke="rgba(200,0,155,0.25)"/>`)
	assert.Contains(t, svg, `<circle cx="10.00" cy="20.00" r="2.00" fill="rgba(155,0,255,0.5)"/>`)

	// links precede atoms in the output, as in the command list
	assert.Less(t, strings.Index(svg, "<line"), strings.Index(svg, "<circle"))
}

func TestCanvasToSVG(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 2))

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	svg := CanvasToSVG(c, 2)

	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `width="16" height="16"`)
	assert.Contains(t, svg, `<circle cx="1.0" cy="1.0" r="0.8"/>`)
}

func TestSeriesToSVG(t *testing.T) {
	assert.Empty(t, SeriesToSVG([]float64{1}, 100, 50, "#fff"))

	svg := SeriesToSVG([]float64{0, 1, 2}, 100, 50, "#00ff88")
	assert.Contains(t, svg, `stroke="#00ff88"`)
	assert.Equal(t, 2, strings.Count(svg, " L"))
}

func TestExportJSON(t *testing.T) {
	result := &driver.Result{
		Stats: []driver.TickStats{
			{Tick: 1, Time: 0.1, Stats: atomic.Stats{Links: 4, MeanSpeed: 2}},
		},
		Metrics:    map[string]float64{"link_density": 2},
		TicksTaken: 1,
	}
	cfg := config.DefaultConfig()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, "atomic", cfg, result))

	var decoded ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "atomic", decoded.Name)
	assert.Equal(t, 1, decoded.Ticks)
	require.Len(t, decoded.Stats, 1)
	assert.Equal(t, 4, decoded.Stats[0].Links)
	assert.Equal(t, cfg.Particles, decoded.Config.Particles)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, "atomic", cfg, result))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, buf.String(), string(data))
}
