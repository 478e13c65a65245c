package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Table file names under the resource directory.
const (
	MapEntranceFile = "MapEntranceConfig.json"
	FloorFile       = "FloorConfig.json"
	AvatarFile      = "AvatarConfig.json"
)

// Load reads every table from dir and builds the index.
func Load(dir string) (*Index, error) {
	entrances, err := loadTable(filepath.Join(dir, MapEntranceFile), parseEntrance)
	if err != nil {
		return nil, err
	}
	floors, err := loadTable(filepath.Join(dir, FloorFile), parseFloor)
	if err != nil {
		return nil, err
	}
	avatars, err := loadTable(filepath.Join(dir, AvatarFile), parseAvatar)
	if err != nil {
		return nil, err
	}
	return NewIndex(entrances, floors, avatars)
}

func loadTable[T any](path string, parse func(gjson.Result) (T, error)) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("parse %s: invalid json", path)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, fmt.Errorf("parse %s: top level must be an array", path)
	}

	rows := root.Array()
	out := make([]T, 0, len(rows))
	for n, row := range rows {
		rec, err := parse(row)
		if err != nil {
			return nil, fmt.Errorf("parse %s row %d: %w", path, n, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// fieldReader reads numeric columns and keeps the first error, so a row
// parser can read every column and check once at the end.
type fieldReader struct {
	err error
}

func (r *fieldReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// number returns v as an integral float within [lo, hi].
func (r *fieldReader) number(v gjson.Result, key string, lo, hi float64) float64 {
	if v.Type != gjson.Number {
		r.fail(fmt.Errorf("%s: want number, got %s", key, v.Raw))
		return 0
	}
	if v.Num != math.Trunc(v.Num) {
		r.fail(fmt.Errorf("%s: %s is not an integer", key, v.Raw))
		return 0
	}
	if v.Num < lo || v.Num > hi {
		r.fail(fmt.Errorf("%s: %s out of range", key, v.Raw))
		return 0
	}
	return v.Num
}

// required reads a uint32 column that must be present.
func (r *fieldReader) required(row gjson.Result, key string) uint32 {
	v := row.Get(key)
	if !v.Exists() {
		r.fail(fmt.Errorf("missing %s", key))
		return 0
	}
	return uint32(r.number(v, key, 0, math.MaxUint32))
}

// optional reads a uint32 column that defaults to zero.
func (r *fieldReader) optional(row gjson.Result, key string) uint32 {
	v := row.Get(key)
	if !v.Exists() {
		return 0
	}
	return uint32(r.number(v, key, 0, math.MaxUint32))
}

func (r *fieldReader) position(v gjson.Result, key string) Position {
	coord := func(axis string) int32 {
		c := v.Get(axis)
		if !c.Exists() {
			return 0
		}
		return int32(r.number(c, key+"."+axis, math.MinInt32, math.MaxInt32))
	}
	return Position{X: coord("X"), Y: coord("Y"), Z: coord("Z")}
}

func parseEntrance(row gjson.Result) (EntranceConfig, error) {
	var r fieldReader
	e := EntranceConfig{
		ID:           r.required(row, "ID"),
		PlaneID:      r.required(row, "PlaneID"),
		FloorID:      r.required(row, "FloorID"),
		EntranceType: EntranceType(row.Get("EntranceType").String()),
	}
	return e, r.err
}

func parseFloor(row gjson.Result) (FloorConfig, error) {
	var r fieldReader
	anchor := row.Get("StartAnchor")
	f := FloorConfig{
		FloorID: r.required(row, "FloorID"),
		StartAnchor: Anchor{
			Pos:      r.position(anchor.Get("Pos"), "StartAnchor.Pos"),
			Rot:      r.position(anchor.Get("Rot"), "StartAnchor.Rot"),
			MapLayer: r.optional(anchor, "MapLayer"),
		},
	}

	row.Get("Groups").ForEach(func(_, g gjson.Result) bool {
		group := GroupConfig{GroupID: r.required(g, "GroupID"), State: r.optional(g, "State")}
		g.Get("Props").ForEach(func(_, p gjson.Result) bool {
			group.Props = append(group.Props, PropPlacement{
				InstID:    r.optional(p, "InstID"),
				PropID:    r.optional(p, "PropID"),
				PropState: r.optional(p, "PropState"),
				Pos:       r.position(p.Get("Pos"), "Pos"),
				Rot:       r.position(p.Get("Rot"), "Rot"),
			})
			return r.err == nil
		})
		f.Groups = append(f.Groups, group)
		return r.err == nil
	})
	if r.err != nil {
		return FloorConfig{}, fmt.Errorf("floor %d: %w", f.FloorID, r.err)
	}
	return f, nil
}

func parseAvatar(row gjson.Result) (AvatarConfig, error) {
	var r fieldReader
	a := AvatarConfig{
		AvatarID: r.required(row, "AvatarID"),
		Name:     row.Get("AvatarName").String(),
		Rarity:   r.optional(row, "Rarity"),
	}
	return a, r.err
}
