package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/site-console/pkg/sitecontent"
)

const completeService = `{"title":"Boiler servicing","category":"heating","contents":[
	{"type":"title","data":"Annual checks","order":0},
	{"type":"content","data":"<p>We <b>inspect</b> everything.</p>","order":1},
	{"type":"coverImage","data":"uploads/boiler.png","order":2}
]}`

const incompleteService = `{"title":"","contents":[
	{"type":"title","data":"   ","order":0},
	{"type":"video","videoType":"url","data":"not a url","order":1}
]}`

func TestCheck_Content(t *testing.T) {
	r := Check("ok.json", []byte(completeService), false)
	assert.True(t, r.OK)
	assert.Equal(t, KindContent, r.Kind)
	assert.Equal(t, 3, r.Blocks)
	require.NotNil(t, r.Summary)
	assert.Equal(t, "Boiler servicing", r.Summary.Title)
	assert.Equal(t, sitecontent.MediaRef("uploads/boiler.png"), r.Summary.Thumbnail)
	assert.Equal(t, "We inspect everything.", r.Summary.Excerpt)

	r = Check("bad.json", []byte(incompleteService), false)
	assert.False(t, r.OK)
	assert.Empty(t, r.Error)

	var blockIndexes []int
	fieldProblems := 0
	for _, p := range r.Problems {
		if p.Field != "" {
			fieldProblems++
			continue
		}
		blockIndexes = append(blockIndexes, p.Index)
	}
	assert.Equal(t, 1, fieldProblems)
	assert.Equal(t, []int{0, 1}, blockIndexes)
}

func TestCheck_FAQ(t *testing.T) {
	faq := `{"categoryName":"Billing","questions":[
		{"question":"When?","answer":"Monthly","order":1},
		{"question":"How?","answer":"Card","order":0}
	]}`
	r := Check("faq.json", []byte(faq), false)
	assert.Equal(t, KindFAQ, r.Kind)
	assert.True(t, r.OK)
	assert.Equal(t, 2, r.Blocks)

	r = Check("faq.json", []byte(`{"categoryName":"Billing","questions":[{"question":"","answer":"x","order":0}]}`), false)
	assert.False(t, r.OK)
	assert.NotEmpty(t, r.Problems)

	// --faq forces the FAQ decoder even without categoryName.
	r = Check("forced.json", []byte(`{"questions":[]}`), true)
	assert.Equal(t, KindFAQ, r.Kind)
	assert.False(t, r.OK)
}

func TestCheck_Undecodable(t *testing.T) {
	r := Check("junk", []byte(`{"title":5}`), false)
	assert.False(t, r.OK)
	assert.NotEmpty(t, r.Error)
	assert.Nil(t, r.Summary)
}

func TestWriteReports(t *testing.T) {
	reports := []Report{
		Check("ok.json", []byte(completeService), false),
		Check("bad.json", []byte(incompleteService), false),
	}

	var text bytes.Buffer
	require.NoError(t, writeReports(&text, reports, false, false))
	out := text.String()
	assert.Contains(t, out, "ok  ")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "block 1 (video)")

	var quiet bytes.Buffer
	require.NoError(t, writeReports(&quiet, reports, true, true))
	var decoded []Report
	require.NoError(t, json.Unmarshal(quiet.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "bad.json", decoded[0].Source)
	assert.Equal(t, 1, countFailed(reports))
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(completeService), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(incompleteService))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{good})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "good.json")

	out.Reset()
	rootCmd.SetArgs([]string{good, "-"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "1 of 2 documents failed", err.Error())
}
