package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/dedis/ballot/auth"
	"github.com/dedis/ballot/contracts"
	"github.com/dedis/ballot/poll"
	"github.com/stretchr/testify/require"
)

func TestKeyFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "ballot-client")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "key.hex")

	kp := auth.NewKeyPair()
	require.NoError(t, writeKey(path, kp))
	read, err := readKey(path)
	require.NoError(t, err)
	require.True(t, kp.Public.Equal(read.Public))
	require.True(t, kp.Private.Equal(read.Private))

	_, err = readKey(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestBuildOp(t *testing.T) {
	op, err := buildOp("create", "Lunch", 2, "", -1)
	require.NoError(t, err)
	require.Equal(t, &contracts.Create{Description: "Lunch", MaxVotes: 2}, op)

	op, err = buildOp("add_option", "", 0, "Pizza", -1)
	require.NoError(t, err)
	require.Equal(t, &contracts.AddOption{Text: "Pizza", Index: -1}, op)

	op, err = buildOp("add_option", "", 0, "Pizza", 0)
	require.NoError(t, err)
	require.Equal(t, &contracts.AddOption{Text: "Pizza", Index: 0, AtIndex: true}, op)

	op, err = buildOp("vote", "", 0, "Pizza", -1)
	require.NoError(t, err)
	require.Equal(t, &contracts.Vote{Selector: poll.ByText("Pizza")}, op)

	op, err = buildOp("remove_option", "", 0, "", 3)
	require.NoError(t, err)
	require.Equal(t, &contracts.RemoveOption{Selector: poll.AtIndex(3)}, op)

	_, err = buildOp("tally_everything", "", 0, "", -1)
	require.Error(t, err)
}
