package main

import (
	"testing"

	"github.com/cyverse-de/quiet-hours/config"
	"github.com/cyverse-de/quiet-hours/ledger"
	"github.com/stretchr/testify/assert"
)

func TestOpenLedgerNotConfigured(t *testing.T) {
	l, closer := openLedger(&config.Config{})
	assert.Nil(t, l)
	assert.Nil(t, closer)
}

func TestOpenLedgerFailure(t *testing.T) {
	l, closer := openLedger(&config.Config{LedgerDriver: "mongodb", LedgerURI: "mongodb://localhost:27017"})
	assert.True(t, l == nil, "a failed connection must yield a nil ledger interface")
	assert.Nil(t, closer)
}

func TestOpenLedgerSQLite(t *testing.T) {
	assert := assert.New(t)

	l, closer := openLedger(&config.Config{
		LedgerDriver: ledger.DriverSQLite,
		LedgerURI:    "file:TestOpenLedgerSQLite?mode=memory&cache=shared",
	})
	assert.NotNil(l)
	if assert.NotNil(closer) {
		assert.NoError(closer.Close())
	}
}
