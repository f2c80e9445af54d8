package render

import (
	"fmt"
	"os"
	"strings"
	"time"

	"soundcraft/internal/equivalence"
	"soundcraft/internal/fulfillment"
	"soundcraft/internal/services"
	"soundcraft/internal/synth"
	"soundcraft/internal/variables"
)

// writeGrimoireLog records the full derivation of a render next to its audio
// artifacts: every resolved variable, the numeric plan, and the synthesis
// outcome. The log is the human-readable provenance for a sealed session.
func writeGrimoireLog(path, name string, at time.Time, params fulfillment.ParameterSet, plan equivalence.RenderPlan, buf *synth.Buffer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Grimoire Log: %s\n\n", name)
	fmt.Fprintf(&b, "**Rendered (UTC):** %s  \n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Policy Version:** %s  \n\n", equivalence.PolicyVersion)

	b.WriteString("## Ritual Variables\n\n")
	for _, def := range variables.Catalog() {
		value, ok := params.Get(def.ID)
		switch {
		case ok:
			fmt.Fprintf(&b, "- **%s:** %s\n", def.Label, value)
		case def.Default != "":
			fmt.Fprintf(&b, "- **%s:** %s (default)\n", def.Label, def.Default)
		}
	}

	b.WriteString("\n## Render Plan\n\n")
	fmt.Fprintf(&b, "- **Duration:** %.3f s (%d samples at %d Hz)\n",
		plan.DurationSeconds(), plan.TotalSamples, plan.SampleRate)
	fmt.Fprintf(&b, "- **Timeline:** %d ticks at %d per quarter, %d BPM\n",
		plan.TotalTicks, plan.TicksPerQuarter, plan.TempoBPM)
	fmt.Fprintf(&b, "- **Channels:** %d\n", plan.Channels)
	fmt.Fprintf(&b, "- **Sample Format:** %s\n", plan.Format)

	b.WriteString("\n### Voices\n\n")
	for i, voice := range plan.Voices {
		if voice.Oscillators == 2 {
			fmt.Fprintf(&b, "%d. %.6f Hz / %.6f Hz (beat %.2f Hz), gain %.4f, envelope %s\n",
				i+1, voice.FreqA, voice.FreqB, voice.FreqB-voice.FreqA, voice.Gain, voice.Envelope)
			continue
		}
		fmt.Fprintf(&b, "%d. %.6f Hz, gain %.4f, envelope %s\n",
			i+1, voice.FreqA, voice.Gain, voice.Envelope)
	}

	b.WriteString("\n## Outcome\n\n")
	fmt.Fprintf(&b, "- **Note Events:** %d\n", len(plan.Notes))
	fmt.Fprintf(&b, "- **Clipped Samples:** %d\n", buf.Clipped)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrExport, "render", "grimoire", "writing grimoire log", err)
	}
	return nil
}
