package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type txStatus string

type tier int

var (
	txPending   = New(txStatus("pending"))
	txConfirmed = New(txStatus("confirmed"))

	tierBronze = New(tier(1), "bronze")
	tierSilver = New(tier(2), "silver")
)

func TestToEnum(t *testing.T) {
	status, err := ToEnum[txStatus]("confirmed")
	require.NoError(t, err)
	require.Equal(t, txConfirmed, status)

	_, err = ToEnum[txStatus]("dropped")
	require.Error(t, err)

	level, err := ToEnum[tier]("silver")
	require.NoError(t, err)
	require.Equal(t, tierSilver, level)

	// Registered under its name only.
	_, err = ToEnum[tier]("2")
	require.Error(t, err)

	type unregistered string
	_, err = ToEnum[unregistered]("x")
	require.Error(t, err)
}

func TestToString(t *testing.T) {
	require.Equal(t, "pending", ToString(txPending))
	require.Equal(t, "bronze", ToString(tierBronze))
	require.Equal(t, "", ToString(tier(9)))
}
