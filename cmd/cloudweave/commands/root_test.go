package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "cloudweave", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{
		"ask",
		"chat",
		"clusters",
		"instances",
		"create",
		"catalog",
		"credentials",
		"prefs",
		"transcript",
		"version",
		"completion",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
	assert.Len(t, cmd.Commands(), len(expectedSubcommands))
}

func TestRoot_PersistentFlags(t *testing.T) {
	flags := Root().PersistentFlags()

	for _, name := range []string{"config", "api-url", "verbose", "log-format", "metrics-listen", "trace", "output"} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "table", flags.Lookup("output").DefValue)
	assert.Equal(t, "o", flags.Lookup("output").Shorthand)
}

func TestRoot_UnknownCommand(t *testing.T) {
	root := Root()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"destroy"})

	assert.Error(t, root.Execute())
}

func TestAsk_RequiresPrompt(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"ask"})

	assert.Error(t, root.Execute())
}

func TestClusters_Flags(t *testing.T) {
	cmd := Clusters(nil)

	assert.NotNil(t, cmd.Flags().Lookup("watch"))
	assert.NotNil(t, cmd.Flags().Lookup("include-proxmox"))
	assert.NotNil(t, cmd.Flags().Lookup("select"))

	actions := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		actions[sub.Name()] = true
		assert.NotNil(t, sub.Flags().Lookup("provider"), sub.Name())
		assert.Equal(t, sub.Name() == "delete", sub.Flags().Lookup("yes") != nil, sub.Name())
	}
	assert.Equal(t, map[string]bool{"delete": true, "start": true, "stop": true}, actions)
}

func TestClusterAction_RequiresProvider(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"clusters", "stop", "web"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestInstances_Subcommands(t *testing.T) {
	cmd := Instances(nil)

	assert.Contains(t, cmd.Aliases, "vms")
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "start", "stop", "restart", "delete"}, names)
}

func TestCreate_Flags(t *testing.T) {
	cmd := Create(nil)

	for _, name := range []string{"provider", "interactive", "remote", "name", "count", "stack",
		"machine-type", "instance-type", "location", "vm-type", "cores", "memory", "disk",
		"password", "generate-ssh-key", "ssh-key-path"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestCreateSwarm_Flags(t *testing.T) {
	swarm, _, err := Create(nil).Find([]string{"swarm"})
	require.NoError(t, err)
	require.Equal(t, "swarm", swarm.Name())

	assert.Equal(t, "3", swarm.Flags().Lookup("nodes").DefValue)
	assert.Nil(t, swarm.Flags().Lookup("count"))
	assert.Nil(t, swarm.Flags().Lookup("machine-type"))
	assert.NotNil(t, swarm.Flags().Lookup("cores"))
}

func TestCreateSwarm_RequiresName(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"create", "swarm"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestPrefsConsent_ValidArgs(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"prefs", "consent", "maybe"})

	assert.Error(t, root.Execute())
}
