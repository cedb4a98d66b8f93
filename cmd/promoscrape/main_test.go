package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/PromoScrape/internal/config"
)

func TestPromptURL(t *testing.T) {
	var out bytes.Buffer
	got, err := promptURL(strings.NewReader("  https://shop.example.com/p/1 \nignored\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/p/1", got)
	assert.Equal(t, "Enter the product URL: ", out.String())

	got, err = promptURL(strings.NewReader("https://shop.example.com/p/2"), &out)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/p/2", got, "input without newline")
}

func TestRedactURI(t *testing.T) {
	assert.Equal(t, "mongodb://***@db:27017", redactURI("mongodb://user:secret@db:27017"))
	assert.Equal(t, "postgres://db/promo", redactURI("postgres://db/promo"))
	assert.Equal(t, "", redactURI(""))
}

func TestInvalidURLIsHandledFailure(t *testing.T) {
	chdirForTest(t, t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("not a url\n"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Enter the product URL: ")
	assert.Contains(t, out.String(), "Failed to fetch the page")
	assert.NoFileExists(t, "scraped_products.csv")
}

func TestPrintConfig(t *testing.T) {
	var out bytes.Buffer
	printConfig(&out, config.DefaultConfig())
	assert.Contains(t, out.String(), "scraped_products.csv")
	assert.Contains(t, out.String(), "Redis:             disabled")
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
