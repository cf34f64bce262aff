package config

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/model"
)

// MatchWeights maps a match strategy to the score it awards.
type MatchWeights map[model.Strategy]float64

// TypeWeights maps a record type to the multiplier applied to its summed
// field contributions.
type TypeWeights map[model.RecordType]float64

// WeightNode is one node of a field weight tree: either a leaf carrying a
// weight, or a branch whose children are keyed by the next path segment.
type WeightNode struct {
	Weight   float64
	Children map[string]*WeightNode // nil for leaves
}

// Leaf returns a leaf node with the given weight.
func Leaf(weight float64) *WeightNode {
	return &WeightNode{Weight: weight}
}

// Branch returns a branch node with the given children.
func Branch(children map[string]*WeightNode) *WeightNode {
	if children == nil {
		children = map[string]*WeightNode{}
	}
	return &WeightNode{Children: children}
}

// IsLeaf reports whether the node carries a weight.
func (n *WeightNode) IsLeaf() bool {
	return n.Children == nil
}

func (n *WeightNode) clone() *WeightNode {
	if n.IsLeaf() {
		return Leaf(n.Weight)
	}
	children := make(map[string]*WeightNode, len(n.Children))
	for key, child := range n.Children {
		children[key] = child.clone()
	}
	return Branch(children)
}

// MarshalJSON renders leaves as numbers and branches as objects.
func (n *WeightNode) MarshalJSON() ([]byte, error) {
	if n.IsLeaf() {
		return json.Marshal(n.Weight)
	}
	return json.Marshal(n.Children)
}

// WeightTree holds the field weights of one record type, keyed by the first
// segment of the field path.
type WeightTree map[string]*WeightNode

// Lookup follows a dotted field path through the tree. Paths that do not end
// on a leaf are reported as missing.
func (t WeightTree) Lookup(path string) (float64, bool) {
	segments := strings.Split(path, ".")
	children := map[string]*WeightNode(t)
	for i, segment := range segments {
		node, ok := children[segment]
		if !ok || node == nil {
			return 0, false
		}
		if i == len(segments)-1 {
			if !node.IsLeaf() {
				return 0, false
			}
			return node.Weight, true
		}
		if node.IsLeaf() {
			return 0, false
		}
		children = node.Children
	}
	return 0, false
}

// Paths returns the dotted path of every leaf, sorted.
func (t WeightTree) Paths() []string {
	var paths []string
	var walk func(prefix string, children map[string]*WeightNode)
	walk = func(prefix string, children map[string]*WeightNode) {
		for key, node := range children {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			if node.IsLeaf() {
				paths = append(paths, path)
				continue
			}
			walk(path, node.Children)
		}
	}
	walk("", t)
	sort.Strings(paths)
	return paths
}

func (t WeightTree) clone() WeightTree {
	clone := make(WeightTree, len(t))
	for key, node := range t {
		clone[key] = node.clone()
	}
	return clone
}

// WeightModel is the immutable weight configuration of an engine. It is
// built once with NewWeightModel and only read afterwards, so it can be
// shared by concurrent searches.
type WeightModel struct {
	match  MatchWeights
	types  TypeWeights
	object map[model.RecordType]WeightTree
	paths  map[model.RecordType][]string
}

// DefaultMatchWeights returns the default score of each match strategy.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		model.StrategyExactWords:         10,
		model.StrategyOutOfOrderWords:    7,
		model.StrategyPartialWords:       3, // multiplied by the matched-token ratio
		model.StrategyExactPhonetic:      6,
		model.StrategyOutOfOrderPhonetic: 5,
		model.StrategyPartialPhonetic:    3, // multiplied by the matched-code ratio
	}
}

// DefaultTypeWeights returns the default multiplier of each record type.
func DefaultTypeWeights() TypeWeights {
	return TypeWeights{
		model.Individual: 10,
		model.Family:     8,
		model.Source:     6,
		model.Media:      6,
	}
}

func eventWeights() *WeightNode {
	return Branch(map[string]*WeightNode{
		"note":  Leaf(6),
		"place": Branch(map[string]*WeightNode{"name": Leaf(3)}),
		"date":  Leaf(2),
	})
}

// DefaultObjectWeights returns the default field weight tree of each record type.
func DefaultObjectWeights() map[model.RecordType]WeightTree {
	return map[model.RecordType]WeightTree{
		model.Individual: {
			"name":      Leaf(10),
			"note":      Leaf(8),
			"event":     eventWeights(),
			"ordinance": eventWeights(),
		},
		model.Family: {
			"spouseName":   Leaf(10),
			"childrenName": Leaf(8),
			"note":         Leaf(6),
			"event":        eventWeights(),
		},
		model.Source: {
			"note": Leaf(6),
		},
		model.Media: {
			"fileName": Leaf(10),
			"note":     Leaf(8),
		},
	}
}

// DefaultWeightModel returns the built-in weight model.
func DefaultWeightModel() *WeightModel {
	m, err := NewWeightModel(nil)
	if err != nil {
		panic(fmt.Sprintf("default weight model is invalid: %v", err))
	}
	return m
}

// NewWeightModel merges override into the default weights and validates the
// result.
//
// Merge rule: within each of the three sections (match, type, object), every
// key present in the override replaces the default entry for that key as a
// whole. There is no deep merge below that level: overriding object.indi with
// {"name": 5} leaves indi with a single weighted field, and every other indi
// field (note, event.*, ordinance.*) then weighs 0. To change one leaf, supply
// the complete subtree of that record type.
func NewWeightModel(override *WeightOverride) (*WeightModel, error) {
	m := &WeightModel{
		match:  DefaultMatchWeights(),
		types:  DefaultTypeWeights(),
		object: DefaultObjectWeights(),
	}

	if override != nil {
		for strategy, weight := range override.Match {
			m.match[strategy] = weight
		}
		for recordType, weight := range override.Type {
			m.types[recordType] = weight
		}
		for recordType, tree := range override.Object {
			if err := checkTree("object."+string(recordType), tree); err != nil {
				return nil, err
			}
			if tree == nil {
				tree = WeightTree{}
			}
			m.object[recordType] = tree.clone()
		}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	m.paths = make(map[model.RecordType][]string, len(m.object))
	for recordType, tree := range m.object {
		m.paths[recordType] = tree.Paths()
	}
	return m, nil
}

func (m *WeightModel) validate() error {
	for strategy, weight := range m.match {
		path := "match." + string(strategy)
		if !strategy.Valid() {
			return internalErrors.NewConfigurationError(path, "unknown match strategy")
		}
		if err := checkWeight(path, weight); err != nil {
			return err
		}
	}
	for recordType, weight := range m.types {
		if err := checkRecordTypeKey("type", recordType); err != nil {
			return err
		}
		if err := checkWeight("type."+string(recordType), weight); err != nil {
			return err
		}
	}
	for recordType, tree := range m.object {
		if err := checkRecordTypeKey("object", recordType); err != nil {
			return err
		}
		if err := checkTree("object."+string(recordType), tree); err != nil {
			return err
		}
	}
	return nil
}

func checkRecordTypeKey(section string, recordType model.RecordType) error {
	if strings.TrimSpace(string(recordType)) == "" {
		return internalErrors.NewConfigurationError(section, "record type cannot be empty")
	}
	return nil
}

func checkTree(prefix string, children map[string]*WeightNode) error {
	for key, node := range children {
		path := prefix + "." + key
		if key == "" || strings.Contains(key, ".") {
			return internalErrors.NewConfigurationError(path, "field name cannot be empty or contain '.'")
		}
		if node == nil {
			return internalErrors.NewConfigurationError(path, "missing weight")
		}
		if node.IsLeaf() {
			if err := checkWeight(path, node.Weight); err != nil {
				return err
			}
			continue
		}
		if err := checkTree(path, node.Children); err != nil {
			return err
		}
	}
	return nil
}

func checkWeight(path string, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return internalErrors.NewConfigurationError(path, "weight must be a finite number")
	}
	if weight < 0 {
		return internalErrors.NewConfigurationError(path, fmt.Sprintf("weight must be non-negative, got %v", weight))
	}
	return nil
}

// MatchWeights returns a copy of the match strategy weights.
func (m *WeightModel) MatchWeights() MatchWeights {
	out := make(MatchWeights, len(m.match))
	for strategy, weight := range m.match {
		out[strategy] = weight
	}
	return out
}

// MatchWeight returns the weight of a strategy, 0 if unset.
func (m *WeightModel) MatchWeight(strategy model.Strategy) float64 {
	return m.match[strategy]
}

// TypeWeight returns the multiplier of a record type, 0 if unset.
func (m *WeightModel) TypeWeight(recordType model.RecordType) float64 {
	return m.types[recordType]
}

// FieldWeight returns the weight of a field path for a record type.
// Missing entries weigh 0.
func (m *WeightModel) FieldWeight(recordType model.RecordType, path string) float64 {
	weight, _ := m.object[recordType].Lookup(path)
	return weight
}

// FieldPaths returns the sorted leaf paths declared for a record type.
func (m *WeightModel) FieldPaths(recordType model.RecordType) []string {
	return append([]string(nil), m.paths[recordType]...)
}

// RecordTypes returns the record types that have a field weight tree:
// built-in types first, in search order, then any others sorted.
func (m *WeightModel) RecordTypes() []model.RecordType {
	types := make([]model.RecordType, 0, len(m.object))
	seen := make(map[model.RecordType]bool, len(m.object))
	for _, recordType := range model.RecordTypes {
		if _, ok := m.object[recordType]; ok {
			types = append(types, recordType)
			seen[recordType] = true
		}
	}
	var extra []model.RecordType
	for recordType := range m.object {
		if !seen[recordType] {
			extra = append(extra, recordType)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(types, extra...)
}

// MaxMatchWeight returns the largest strategy weight, the upper bound of any
// field match score.
func (m *WeightModel) MaxMatchWeight() float64 {
	var highest float64
	for _, weight := range m.match {
		if weight > highest {
			highest = weight
		}
	}
	return highest
}

// weightModelJSON is the serialized shape of a WeightModel; it matches the
// override file format.
type weightModelJSON struct {
	Match  MatchWeights                     `json:"match"`
	Type   TypeWeights                      `json:"type"`
	Object map[model.RecordType]WeightTree `json:"object"`
}

// MarshalJSON renders the model in the same shape as an override file.
func (m *WeightModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(weightModelJSON{
		Match:  m.match,
		Type:   m.types,
		Object: m.object,
	})
}
