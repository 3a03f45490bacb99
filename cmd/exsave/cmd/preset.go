package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/apex/log"
	exsave "github.com/goliatone/go-exsave"
	"github.com/goliatone/go-exsave/pkg/preset"
	"github.com/goliatone/go-exsave/pkg/rules"
	"github.com/goliatone/go-exsave/pkg/storage"
	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Work with preset side-files",
}

var presetDumpCmd = &cobra.Command{
	Use:   "dump <name>",
	Short: "Print the plugins carried by a preset side-file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storage.NewFileStore(nil)
		transfer, err := newTransfer(exsave.New(exsave.WithStore(store)), store)
		if err != nil {
			return err
		}
		path := transfer.Path(args[0])
		doc, ok, err := store.Load(cmd.Context(), path)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s has no side-file", args[0])
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "preset: %s\n", path)
		for _, plugin := range doc.FindElements("//plugin") {
			fmt.Fprintf(out, "plugin %s\n", plugin.SelectAttrValue("name", ""))
			for _, prop := range plugin.SelectElements("prop") {
				fmt.Fprintf(out, "  %s=%s\n", prop.SelectAttrValue("name", ""), prop.SelectAttrValue("value", ""))
			}
		}
		return nil
	},
}

var (
	copyPlugins    []string
	copyConditions []string
)

var presetCopyCmd = &cobra.Command{
	Use:   "copy <side-file> <entity> <preset>",
	Short: "Write the given plugins of an entity to a preset side-file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storage.NewFileStore(nil)
		m := exsave.New(exsave.WithStore(store), exsave.WithSideFileSuffix(cfg.Suffix))
		if err := m.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		transfer, err := newTransfer(m, store)
		if err != nil {
			return err
		}
		conditions, err := parseConditions(copyConditions)
		if err != nil {
			return err
		}
		for _, name := range copyPlugins {
			if err := transfer.Register(name, preset.WithCondition(conditions[name])); err != nil {
				return err
			}
			delete(conditions, name)
		}
		if len(conditions) > 0 {
			names := slices.Sorted(maps.Keys(conditions))
			return fmt.Errorf("--condition given for plugins missing from --plugin: %s", strings.Join(names, ", "))
		}
		if transfer.Extract(args[1], preset.KindAll) == nil {
			log.WithField("entity", args[1]).Warn("nothing to transfer")
			return nil
		}
		return transfer.Commit(cmd.Context(), args[1], args[2], preset.KindAll)
	},
}

func newTransfer(source preset.Source, store storage.Store) (*preset.Transfer, error) {
	evaluator, err := rules.New(cfg.RuleEngine, rules.NewMapCache(), preset.NewFunctions())
	if err != nil {
		return nil, err
	}
	return preset.New(source,
		preset.WithStore(store),
		preset.WithDirectory(cfg.PresetDir),
		preset.WithSuffix(cfg.PresetSuffix),
		preset.WithEvaluator(evaluator),
		preset.WithLogger(exsave.NewApexLogger(log.Log)),
	), nil
}

// parseConditions reads plugin=expr pairs. The expression may itself
// contain '='.
func parseConditions(pairs []string) (map[string]string, error) {
	conditions := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, expr, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.TrimSpace(expr) == "" {
			return nil, fmt.Errorf("condition %q: want plugin=expr", pair)
		}
		conditions[name] = expr
	}
	return conditions, nil
}

func init() {
	presetCopyCmd.Flags().StringSliceVar(&copyPlugins, "plugin", nil, "Plugin to carry, repeatable")
	presetCopyCmd.Flags().StringArrayVar(&copyConditions, "condition", nil, "plugin=expr transfer condition, repeatable")
	presetCmd.AddCommand(presetDumpCmd, presetCopyCmd)
}
