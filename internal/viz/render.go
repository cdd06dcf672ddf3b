// Package viz renders molecules, structures, and score charts as
// self-contained HTML/SVG documents, with optional PNG capture through a
// headless browser.
package viz

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

const (
	// smilesDrawerURL renders SMILES strings onto canvases client-side.
	smilesDrawerURL = "https://unpkg.com/smiles-drawer@2.1.7/dist/smiles-drawer.min.js"
	// threeDmolURL provides the interactive 3-D structure viewer.
	threeDmolURL = "https://3dmol.org/build/3Dmol-min.js"

	// maxGridMolecules caps grid pages for very large candidate batches.
	maxGridMolecules = 50
)

// Renderer builds visualization documents. HTML and SVG generation is
// always available; PNG snapshots additionally require a local Chrome (see
// SnapshotAvailable).
type Renderer struct {
	ViewerWidth  int
	ViewerHeight int
	CellSize     int
}

// NewRenderer returns a Renderer with the default viewer dimensions.
func NewRenderer() *Renderer {
	return &Renderer{
		ViewerWidth:  800,
		ViewerHeight: 600,
		CellSize:     250,
	}
}

// Available reports whether document rendering can run. It exists so the
// orchestrator can branch on rendering capability once at startup.
func (r *Renderer) Available() bool {
	return true
}

type gridData struct {
	Target    string
	ScriptURL string
	CellSize  int
	Molecules []types.CandidateMolecule
}

var gridTmpl = template.Must(template.New("grid").Funcs(template.FuncMap{
	"score": formatScore,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Candidate Molecules: {{.Target}}</title>
<script src="{{.ScriptURL}}"></script>
<style>
body { font-family: sans-serif; background: #fff; color: #333; }
.grid { display: flex; flex-wrap: wrap; gap: 12px; }
figure.cell { margin: 0; padding: 8px; border: 1px solid #e0e0e0; border-radius: 4px; text-align: center; }
figcaption { font-size: 13px; margin-top: 4px; }
</style>
</head>
<body>
<h1>Candidate Molecules: {{.Target}}</h1>
<div class="grid">
{{range .Molecules}}<figure class="cell">
<canvas data-smiles="{{.SMILES}}" width="{{$.CellSize}}" height="{{$.CellSize}}"></canvas>
<figcaption>#{{.Rank}} (QED: {{score .Score}})</figcaption>
</figure>
{{end}}</div>
<script>SmiDrawer.apply();</script>
</body>
</html>
`))

// MoleculeGridHTML renders a score-ranked grid of candidate molecules.
func (r *Renderer) MoleculeGridHTML(targetID string, candidates []types.CandidateMolecule) string {
	ranked := types.RankCandidates(candidates)
	if len(ranked) > maxGridMolecules {
		ranked = ranked[:maxGridMolecules]
	}
	var out strings.Builder
	_ = gridTmpl.Execute(&out, &gridData{
		Target:    targetID,
		ScriptURL: smilesDrawerURL,
		CellSize:  r.CellSize,
		Molecules: ranked,
	})
	return out.String()
}

type viewerData struct {
	Target    string
	ScriptURL string
	Width     int
	Height    int
	PDB       string
}

var viewerTmpl = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Predicted Structure: {{.Target}}</title>
<script src="{{.ScriptURL}}"></script>
</head>
<body>
<h1>Predicted Structure: {{.Target}}</h1>
<div id="viewer" style="width: {{.Width}}px; height: {{.Height}}px; position: relative;"></div>
<textarea id="pdbData" style="display: none;">{{.PDB}}</textarea>
<script>
var viewer = $3Dmol.createViewer(document.getElementById("viewer"), { backgroundColor: "white" });
viewer.addModel(document.getElementById("pdbData").value, "pdb");
viewer.setStyle({}, { cartoon: { color: "spectrum" } });
viewer.zoomTo();
viewer.render();
</script>
</body>
</html>
`))

// StructureViewerHTML renders an interactive 3-D viewer around an embedded
// PDB payload, so the document works offline apart from the viewer script.
func (r *Renderer) StructureViewerHTML(targetID, pdb string) string {
	var out strings.Builder
	_ = viewerTmpl.Execute(&out, &viewerData{
		Target:    targetID,
		ScriptURL: threeDmolURL,
		Width:     r.ViewerWidth,
		Height:    r.ViewerHeight,
		PDB:       pdb,
	})
	return out.String()
}

// ScoreChartSVG renders a horizontal bar chart of candidate QED scores,
// highest first. Scores are clamped to [0,1] for bar sizing.
func (r *Renderer) ScoreChartSVG(targetID string, candidates []types.CandidateMolecule) string {
	ranked := types.RankCandidates(candidates)
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	const (
		width     = 640
		barHeight = 22
		barGap    = 8
		labelPad  = 200
		topPad    = 40
	)
	height := topPad + len(ranked)*(barHeight+barGap) + barGap

	var out strings.Builder
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="sans-serif">`+"\n", width, height)
	fmt.Fprintf(&out, `<text x="8" y="24" font-size="16">QED Scores: %s</text>`+"\n", html.EscapeString(targetID))
	for i, mol := range ranked {
		y := topPad + i*(barHeight+barGap)
		bar := clamp(mol.Score) * float64(width-labelPad-60)
		label := mol.SMILES
		if len(label) > 24 {
			label = label[:24]
		}
		fmt.Fprintf(&out, `<text x="8" y="%d" font-size="12">#%d %s</text>`+"\n",
			y+barHeight-6, mol.Rank, html.EscapeString(label))
		fmt.Fprintf(&out, `<rect x="%d" y="%d" width="%.1f" height="%d" fill="#2196F3"/>`+"\n",
			labelPad, y, bar, barHeight)
		fmt.Fprintf(&out, `<text x="%.1f" y="%d" font-size="12">%.3f</text>`+"\n",
			float64(labelPad)+bar+6, y+barHeight-6, mol.Score)
	}
	out.WriteString("</svg>\n")
	return out.String()
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}
