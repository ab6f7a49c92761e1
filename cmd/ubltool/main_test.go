package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestScaffoldRoundTrip(t *testing.T) {
	for _, typ := range []string{"invoice", "credit_note", "order"} {
		t.Run(typ, func(t *testing.T) {
			sample, _, err := run(t, "", "scaffold", "--type", typ)
			require.NoError(t, err)

			report, _, err := run(t, sample, "validate", "--type", typ)
			require.NoError(t, err)
			assert.Contains(t, report, `"valid": true`)

			xml, _, err := run(t, sample, "generate", "--type", typ)
			require.NoError(t, err)

			check, _, err := run(t, xml, "check-xml", "--type", typ)
			require.NoError(t, err)
			assert.Contains(t, check, `"valid": true`)
		})
	}
}

func TestGenerate_WritesFile(t *testing.T) {
	sample, _, err := run(t, "", "scaffold")
	require.NoError(t, err)
	dir := t.TempDir()
	in := filepath.Join(dir, "invoice.json")
	out := filepath.Join(dir, "invoice.xml")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))

	_, _, err = run(t, "", "generate", "--in", in, "--out", out, "--pdf")
	require.NoError(t, err)

	xml, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(xml), "<Invoice")
	assert.Contains(t, string(xml), "invoice-INV-0001.pdf")
}

func TestValidate_InvalidExitsWithError(t *testing.T) {
	sample, _, err := run(t, "", "scaffold")
	require.NoError(t, err)
	broken := strings.Replace(sample, `"payableAmount": "`, `"payableAmount": "1`, 1)
	require.NotEqual(t, sample, broken)

	_, stderr, err := run(t, broken, "generate")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, stderr, "payableAmount mismatch")
}

func TestCheckXML_RejectsWrongType(t *testing.T) {
	sample, _, err := run(t, "", "scaffold")
	require.NoError(t, err)
	xml, _, err := run(t, sample, "generate")
	require.NoError(t, err)

	out, _, err := run(t, xml, "check-xml", "--type", "order")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `expected \"Order\"`)
}

func TestUnknownType(t *testing.T) {
	_, _, err := run(t, "", "scaffold", "--type", "receipt")
	assert.ErrorContains(t, err, "unsupported --type")
}
