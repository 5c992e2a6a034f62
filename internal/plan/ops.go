package plan

import (
	"encoding/json"
	"fmt"
)

// Scene management operations. All of them address scenes by list position:
// the numeric scene ID is display metadata and may legitimately collide
// after a duplicate. Every structural edit invalidates previously computed
// timeline offsets; callers rebuild the schedule from the plan afterwards.

// InsertScene inserts a scene at index i, shifting the rest right.
func (p *VideoPlan) InsertScene(i int, scene VideoScene) error {
	if i < 0 || i > len(p.Scenes) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(p.Scenes))
	}
	p.Scenes = append(p.Scenes, VideoScene{})
	copy(p.Scenes[i+1:], p.Scenes[i:])
	p.Scenes[i] = scene
	return nil
}

// DuplicateScene deep-copies the scene at index i and inserts the copy
// immediately after it. The copy keeps the source's ID.
func (p *VideoPlan) DuplicateScene(i int) error {
	if i < 0 || i >= len(p.Scenes) {
		return fmt.Errorf("duplicate index %d out of range [0,%d)", i, len(p.Scenes))
	}

	data, err := json.Marshal(p.Scenes[i])
	if err != nil {
		return fmt.Errorf("failed to copy scene %d: %w", i, err)
	}
	var dup VideoScene
	if err := json.Unmarshal(data, &dup); err != nil {
		return fmt.Errorf("failed to copy scene %d: %w", i, err)
	}

	return p.InsertScene(i+1, dup)
}

// MoveScene moves the scene at index from to index to, preserving the
// relative order of everything else. The scene multiset is unchanged.
func (p *VideoPlan) MoveScene(from, to int) error {
	n := len(p.Scenes)
	if from < 0 || from >= n {
		return fmt.Errorf("move source %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("move target %d out of range [0,%d)", to, n)
	}
	if from == to {
		return nil
	}

	scene := p.Scenes[from]
	p.Scenes = append(p.Scenes[:from], p.Scenes[from+1:]...)
	p.Scenes = append(p.Scenes, VideoScene{})
	copy(p.Scenes[to+1:], p.Scenes[to:])
	p.Scenes[to] = scene
	return nil
}

// DeleteScene removes the scene at index i. A plan must keep at least one
// scene, so deleting the last remaining scene is refused.
func (p *VideoPlan) DeleteScene(i int) error {
	if i < 0 || i >= len(p.Scenes) {
		return fmt.Errorf("delete index %d out of range [0,%d)", i, len(p.Scenes))
	}
	if len(p.Scenes) == 1 {
		return fmt.Errorf("cannot delete the only scene")
	}
	p.Scenes = append(p.Scenes[:i], p.Scenes[i+1:]...)
	return nil
}

// MergeScenePatch shallow-merges a JSON patch document over the scene at
// index i: fields present in the patch overwrite, absent fields are
// preserved. The merge is apply-or-discard — if the patch or the merged
// result fails to parse, the scene is left untouched and an error returned.
func (p *VideoPlan) MergeScenePatch(i int, patch []byte) error {
	if i < 0 || i >= len(p.Scenes) {
		return fmt.Errorf("patch index %d out of range [0,%d)", i, len(p.Scenes))
	}

	merged, err := shallowMerge(p.Scenes[i], patch)
	if err != nil {
		return err
	}

	var scene VideoScene
	if err := json.Unmarshal(merged, &scene); err != nil {
		return fmt.Errorf("merged scene is not valid: %w", err)
	}
	if scene.Duration <= 0 {
		return fmt.Errorf("merged scene has non-positive duration %.2f", scene.Duration)
	}

	p.Scenes[i] = scene
	return nil
}

// MergePlanPatch shallow-merges a JSON patch over the whole plan. A patch
// that includes "scenes" replaces the scene list wholesale.
func (p *VideoPlan) MergePlanPatch(patch []byte) error {
	merged, err := shallowMerge(p, patch)
	if err != nil {
		return err
	}

	var next VideoPlan
	if err := json.Unmarshal(merged, &next); err != nil {
		return fmt.Errorf("merged plan is not valid: %w", err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("merged plan rejected: %w", err)
	}

	*p = next
	return nil
}

// shallowMerge overlays patch's top-level keys onto base's JSON document.
func shallowMerge(base interface{}, patch []byte) ([]byte, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal base document: %w", err)
	}

	var baseMap map[string]json.RawMessage
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, fmt.Errorf("failed to read base document: %w", err)
	}

	var patchMap map[string]json.RawMessage
	if err := json.Unmarshal(patch, &patchMap); err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}

	for k, v := range patchMap {
		baseMap[k] = v
	}

	return json.Marshal(baseMap)
}
