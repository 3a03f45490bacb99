package cmd

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	exsave "github.com/goliatone/go-exsave"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <side-file>",
	Short: "Print the target, entities and plugin properties of a side-file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		if err := m.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "target: %s\n", m.Target())
		data := m.Collection()
		for _, id := range data.EntityIDs() {
			e, _ := data.Entity(id)
			fmt.Fprintf(out, "maid %s %s %s %s\n", id, e.Identity.LastName, e.Identity.FirstName, e.Identity.CreatedAt)
			dumpPlugins(cmd, m, id)
		}
		for _, name := range data.NPCNames() {
			fmt.Fprintf(out, "npc %s\n", name)
			e, _ := data.NPC(name)
			for _, plugin := range e.PluginNames() {
				props, _ := e.Plugin(plugin)
				for _, key := range props.Keys() {
					fmt.Fprintf(out, "  %s.%s=%s\n", plugin, key, props.Get(key, ""))
				}
			}
		}
		return nil
	},
}

func dumpPlugins(cmd *cobra.Command, m *exsave.Manager, id string) {
	e, ok := m.Collection().Entity(id)
	if !ok {
		return
	}
	for _, plugin := range e.PluginNames() {
		values := m.Plugin(id, plugin).Values()
		props, _ := e.Plugin(plugin)
		for _, key := range props.Keys() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s.%s=%s\n", plugin, key, values[key])
		}
	}
}

var getCmd = &cobra.Command{
	Use:   "get <side-file> <entity> <plugin> <prop>",
	Short: "Print one property",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		if err := m.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		if !m.Contains(args[1], args[2], args[3]) {
			return fmt.Errorf("%s/%s/%s not found", args[1], args[2], args[3])
		}
		fmt.Fprintln(cmd.OutOrStdout(), m.Get(args[1], args[2], args[3], ""))
		return nil
	},
}

var keepExisting bool

var setCmd = &cobra.Command{
	Use:   "set <side-file> <entity> <plugin> <prop> <value>",
	Short: "Write one property and save the side-file",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		if err := m.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		var opts []exsave.WriteOption
		if keepExisting {
			opts = append(opts, exsave.KeepExisting())
		}
		if !m.Set(args[1], args[2], args[3], args[4], opts...) {
			log.WithField("prop", args[3]).Warn("property not written")
			return nil
		}
		return m.Save(cmd.Context(), args[0], m.Target())
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <side-file> <entity> <plugin> <prop>",
	Short: "Remove one property and save the side-file",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		if err := m.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		if !m.Remove(args[1], args[2], args[3]) {
			log.WithField("prop", args[3]).Warn("property not found")
			return nil
		}
		return m.Save(cmd.Context(), args[0], m.Target())
	},
}

var keepIDs string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <side-file>",
	Short: "Drop every character not listed in --keep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		if err := m.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		var live []string
		for _, id := range strings.Split(keepIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				live = append(live, id)
			}
		}
		before := len(m.EntityIDs())
		m.Cleanup(live)
		log.WithFields(log.Fields{
			"removed": before - len(m.EntityIDs()),
			"path":    args[0],
		}).Info("cleanup")
		return m.Save(cmd.Context(), args[0], m.Target())
	},
}

func init() {
	setCmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Do not overwrite an existing property")
	cleanupCmd.Flags().StringVar(&keepIDs, "keep", "", "Comma separated character ids to keep")
}
