package bppcli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli"

	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/bpp/testUtils"
)

type CLITestSuite struct {
	suite.Suite
	testApp *cli.App
	buf     *bytes.Buffer
	records string
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.testApp = GetApp()
	s.testApp.Writer = s.buf

	data := gjson.GetBytes(testUtils.Fixture(s.T(), "strapi/benefits.json"), "data").Raw
	s.records = filepath.Join(s.T().TempDir(), "records.json")
	require.NoError(s.T(), os.WriteFile(s.records, []byte(data), 0600))
}

func (s *CLITestSuite) TestMapFile() {
	args := []string{Name, "map-file", "--file", s.records, "--action", "on_select",
		"--bap-id", "bap.example.org", "--bap-uri", "https://bap.example.org",
		"--bpp-id", "bpp.example.org", "--bpp-uri", "https://bpp.example.org"}
	require.NoError(s.T(), s.testApp.Run(args))

	out := s.buf.Bytes()
	assert.Equal(s.T(), "on_select", gjson.GetBytes(out, "context.action").String())
	assert.Equal(s.T(), "bpp.example.org", gjson.GetBytes(out, "context.bpp_id").String())
	assert.Equal(s.T(), int64(2), gjson.GetBytes(out, "message.catalog.providers.0.items.#").Int())
}

func (s *CLITestSuite) TestMapFileDefaultsFromEnv() {
	testUtils.SetEnvVars(s.T(), map[string]string{"BPP_ID": "env-bpp", "BPP_URI": "https://env-bpp"})

	args := []string{Name, "map-file", "--file", s.records, "--bap-id", "bap", "--bap-uri", "https://bap"}
	require.NoError(s.T(), s.testApp.Run(args))

	out := s.buf.Bytes()
	assert.Equal(s.T(), "on_search", gjson.GetBytes(out, "context.action").String())
	assert.Equal(s.T(), "env-bpp", gjson.GetBytes(out, "context.bpp_id").String())
}

func (s *CLITestSuite) TestMapFileErrors() {
	err := s.testApp.Run([]string{Name, "map-file"})
	assert.EqualError(s.T(), err, "file is required")
	assert.Contains(s.T(), s.buf.String(), "file is required")

	err = s.testApp.Run([]string{Name, "map-file", "--file", filepath.Join(s.T().TempDir(), "missing.json")})
	assert.Error(s.T(), err)

	err = s.testApp.Run([]string{Name, "map-file", "--file", s.records, "--bap-id", "bap"})
	var invalid *bpperrors.InvalidRequesterIdentityError
	assert.True(s.T(), errors.As(err, &invalid))
}

func (s *CLITestSuite) TestStartAPIMissingConfiguration() {
	env := testUtils.RequiredEnv("")
	env["BPP_URI"] = ""
	testUtils.SetEnvVars(s.T(), env)

	err := s.testApp.Run([]string{Name, "start-api"})
	var missing *bpperrors.MissingConfigurationError
	require.True(s.T(), errors.As(err, &missing))
	assert.Equal(s.T(), []string{"STRAPI_URL", "BPP_URI"}, missing.Keys)
}

func TestNewServer(t *testing.T) {
	testUtils.SetEnvVars(t, testUtils.RequiredEnv("http://strapi.local/api"))
	testUtils.SetEnvVars(t, map[string]string{
		"DATABASE_URL":     "",
		"BPP_PORT":         ":4000",
		"API_READ_TIMEOUT": "3",
	})

	srv, cleanup, err := newServer(context.Background())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, ":4000", srv.Addr)
	assert.Equal(t, "3s", srv.ReadTimeout.String())
	assert.Equal(t, "20s", srv.WriteTimeout.String())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_version", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
