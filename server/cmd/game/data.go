package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phuhao00/rpgserver/server/configs"
	"github.com/phuhao00/rpgserver/server/internal/data"
	"github.com/phuhao00/rpgserver/server/internal/model"
	"github.com/phuhao00/rpgserver/server/internal/scene"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect static game data",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Load the data tables and lay out every entrance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				path, _ := cmd.Flags().GetString("config")
				cfg, err := configs.Load(path)
				if err != nil {
					return err
				}
				dir = cfg.Data.Dir
			}
			return checkData(cmd, dir)
		},
	}
	check.Flags().String("dir", "", "data directory (defaults to data.dir from the config)")
	cmd.AddCommand(check)
	return cmd
}

// checkData builds every entrance's scene for a sample player so broken
// layouts surface before a client hits them.
func checkData(cmd *cobra.Command, dir string) error {
	idx, err := data.Load(dir)
	if err != nil {
		return err
	}
	entrances, floors, avatars := idx.Counts()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d entrances, %d floors, %d avatars\n", dir, entrances, floors, avatars)

	registry := scene.NewRegistry(idx)
	sample := scene.Owner{UID: 1, Lineup: model.Lineup{Avatars: []model.LineupAvatar{{AvatarID: 1309, Hp: model.FullHp}}}}
	var errs []error
	for _, e := range idx.Entrances() {
		if _, ok := idx.FindFloorConfig(e.FloorID); !ok {
			fmt.Fprintf(out, "warning: entrance %d: floor %d has no layout\n", e.ID, e.FloorID)
		}
		inst, err := registry.Build(e, sample)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "entrance %d: plane %d floor %d mode %d groups %d\n",
			e.ID, e.PlaneID, e.FloorID, inst.GameMode, len(inst.Groups()))
	}
	return errors.Join(errs...)
}
