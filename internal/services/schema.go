package services

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed skills_data.schema.json
var skillsDataSchemaJSON []byte

// compileSkillsDataSchema 編譯內嵌的 skills_data 文件結構
func compileSkillsDataSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("skills_data.schema.json", bytes.NewReader(skillsDataSchemaJSON)); err != nil {
		return nil, fmt.Errorf("無法載入 skills_data schema: %w", err)
	}
	schema, err := compiler.Compile("skills_data.schema.json")
	if err != nil {
		return nil, fmt.Errorf("無法編譯 skills_data schema: %w", err)
	}
	return schema, nil
}

// validateSkillsDocument 檢查序列化後的 skills_data 文件
func validateSkillsDocument(schema *jsonschema.Schema, document string) error {
	var doc any
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return fmt.Errorf("skills_data 文件不是有效的 JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("skills_data 文件不符合 schema: %w", err)
	}
	return nil
}
