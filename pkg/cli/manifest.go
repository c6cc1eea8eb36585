package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestCase is one program in a check manifest. Sources are written
// in S/T/L notation: 'S' is a space, 'T' a tab, 'L' a line feed; every
// other character, lowercase letters included, is ignored, so cases can
// be annotated freely.
type ManifestCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Stdin  string `yaml:"stdin,omitempty"`

	// Want is the exact expected program output.
	Want string `yaml:"want,omitempty"`

	// WantErr, when set, marks the case as expected to fail; the value
	// must be a substring of the failure's message.
	WantErr string `yaml:"want_err,omitempty"`
}

// Manifest is a YAML file describing programs and their expected
// behavior, used by `wspace check` and the functional tests.
type Manifest struct {
	Cases []ManifestCase `yaml:"cases"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// DecodeNotation converts S/T/L notation into the significant bytes of
// a Whitespace source text. Only the uppercase letters are significant,
// so lowercase annotations stay inert.
func DecodeNotation(notation string) string {
	var sb strings.Builder
	for _, r := range notation {
		switch r {
		case 'S':
			sb.WriteByte(' ')
		case 'T':
			sb.WriteByte('\t')
		case 'L':
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// CheckManifest runs every case in the manifest and reports results to
// out. It returns an error if any case fails.
func CheckManifest(m *Manifest, out io.Writer) error {
	failed := 0

	for _, c := range m.Cases {
		var got bytes.Buffer
		var diag bytes.Buffer

		err := RunSource(DecodeNotation(c.Source),
			WithInput(strings.NewReader(c.Stdin)),
			WithOutput(&got),
			WithDiagnostics(&diag))

		switch {
		case c.WantErr != "":
			if err == nil {
				fmt.Fprintf(out, "FAIL %s: expected failure containing %q, ran cleanly\n", c.Name, c.WantErr)
				failed++
			} else if !strings.Contains(err.Error(), c.WantErr) {
				fmt.Fprintf(out, "FAIL %s: failure %q does not contain %q\n", c.Name, err.Error(), c.WantErr)
				failed++
			} else {
				fmt.Fprintf(out, "ok   %s\n", c.Name)
			}

		case err != nil:
			fmt.Fprintf(out, "FAIL %s: unexpected failure: %s\n", c.Name, err)
			failed++

		case got.String() != c.Want:
			fmt.Fprintf(out, "FAIL %s: output %q, want %q\n", c.Name, got.String(), c.Want)
			failed++

		default:
			fmt.Fprintf(out, "ok   %s\n", c.Name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(m.Cases))
	}
	fmt.Fprintf(out, "%d cases passed\n", len(m.Cases))
	return nil
}
