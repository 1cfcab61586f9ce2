package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesDatedLogFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hello")

	expected := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestWithScenarioAttachesField(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	scoped := l.WithScenario("parallel-up")
	scoped.Info("scenario log line")

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "parallel-up")
	assert.Contains(t, string(data), "scenario_id")
}

func TestWithContractAttachesField(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	require.NoError(t, err)

	scoped := l.WithContract("C123")
	scoped.Info("contract log line")

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "C123")
	assert.Contains(t, string(data), "contract_id")
}
