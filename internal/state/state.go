// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apex/log"
)

// Kind discriminates the two document shapes this tool accepts.
type Kind string

const (
	KindState Kind = "state"
	KindPlan  Kind = "plan"
)

// Resource is one resource instance, flattened out of either document shape
// and keyed by its absolute address.
type Resource struct {
	Address    string                 `json:"address"`
	Module     string                 `json:"module,omitempty"`
	Mode       string                 `json:"mode"`
	Type       string                 `json:"type"`
	Name       string                 `json:"name"`
	Provider   string                 `json:"provider"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Document is the parsed, flattened form of a state file or plan export.
type Document struct {
	Kind             Kind
	TerraformVersion string
	Serial           int64
	Lineage          string
	Resources        map[string]Resource
}

// stateFile is the Terraform state v4 shape.
type stateFile struct {
	Version          int             `json:"version"`
	TerraformVersion string          `json:"terraform_version"`
	Serial           int64           `json:"serial"`
	Lineage          string          `json:"lineage"`
	Resources        []stateResource `json:"resources"`
}

type stateResource struct {
	Module    string          `json:"module"`
	Mode      string          `json:"mode"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	Provider  string          `json:"provider"`
	Instances []stateInstance `json:"instances"`
}

type stateInstance struct {
	IndexKey      interface{}            `json:"index_key"`
	SchemaVersion int                    `json:"schema_version"`
	Attributes    map[string]interface{} `json:"attributes"`
}

// planFile is the `terraform show -json` plan export shape.
type planFile struct {
	FormatVersion    string               `json:"format_version"`
	TerraformVersion string               `json:"terraform_version"`
	ResourceChanges  []planResourceChange `json:"resource_changes"`
}

type planResourceChange struct {
	Address       string `json:"address"`
	ModuleAddress string `json:"module_address"`
	Mode          string `json:"mode"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	ProviderName  string `json:"provider_name"`
	Change        struct {
		Actions []string               `json:"actions"`
		Before  map[string]interface{} `json:"before"`
		After   map[string]interface{} `json:"after"`
	} `json:"change"`
}

// Parse decodes a document of either shape. The shape is detected from the
// keys actually present, not from file naming.
func Parse(doc []byte) (*Document, error) {
	var probe struct {
		Resources       json.RawMessage `json:"resources"`
		ResourceChanges json.RawMessage `json:"resource_changes"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	if probe.ResourceChanges != nil {
		return parsePlan(doc)
	}
	if probe.Resources != nil {
		return parseState(doc)
	}

	return nil, fmt.Errorf("document has neither resources nor resource_changes")
}

func parseState(doc []byte) (*Document, error) {
	var sf stateFile
	if err := json.Unmarshal(doc, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	result := &Document{
		Kind:             KindState,
		TerraformVersion: sf.TerraformVersion,
		Serial:           sf.Serial,
		Lineage:          sf.Lineage,
		Resources:        map[string]Resource{},
	}

	for _, r := range sf.Resources {
		base := resourceAddress(r.Module, r.Mode, r.Type, r.Name)
		for _, inst := range r.Instances {
			addr := base
			if inst.IndexKey != nil {
				addr = fmt.Sprintf("%s[%v]", base, inst.IndexKey)
			}
			result.Resources[addr] = Resource{
				Address:    addr,
				Module:     r.Module,
				Mode:       r.Mode,
				Type:       r.Type,
				Name:       r.Name,
				Provider:   r.Provider,
				Attributes: inst.Attributes,
			}
		}
	}

	log.Debugf("parsed state serial %d with %d resources", sf.Serial, len(result.Resources))
	return result, nil
}

func parsePlan(doc []byte) (*Document, error) {
	var pf planFile
	if err := json.Unmarshal(doc, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse plan export: %w", err)
	}

	result := &Document{
		Kind:             KindPlan,
		TerraformVersion: pf.TerraformVersion,
		Resources:        map[string]Resource{},
	}

	for _, rc := range pf.ResourceChanges {
		// A plan describes the post-apply world, so a planned destroy means
		// the resource is absent on this side and shows up as removed.
		if isDelete(rc.Change.Actions) {
			continue
		}

		// "after" is the value to drift against. No-op changes may carry only
		// "before"; unknown-value creates may carry neither.
		attrs := rc.Change.After
		if attrs == nil {
			attrs = rc.Change.Before
		}

		result.Resources[rc.Address] = Resource{
			Address:    rc.Address,
			Module:     rc.ModuleAddress,
			Mode:       rc.Mode,
			Type:       rc.Type,
			Name:       rc.Name,
			Provider:   rc.ProviderName,
			Attributes: attrs,
		}
	}

	log.Debugf("parsed plan with %d resource changes", len(pf.ResourceChanges))
	return result, nil
}

func isDelete(actions []string) bool {
	return len(actions) == 1 && actions[0] == "delete"
}

// resourceAddress builds the absolute address the way terraform renders it,
// e.g. module.net.data.aws_ami.base or aws_instance.web.
func resourceAddress(module, mode, typ, name string) string {
	parts := make([]string, 0, 4)
	if module != "" {
		parts = append(parts, module)
	}
	if mode == "data" {
		parts = append(parts, "data")
	}
	parts = append(parts, typ, name)
	return strings.Join(parts, ".")
}
