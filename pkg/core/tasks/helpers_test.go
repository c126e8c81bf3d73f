package tasks

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
)

func rawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func textField(name, value string) model.CustomField {
	return model.CustomField{ID: "f-" + name, Name: name, Type: model.FieldTypeText, Value: rawJSON(value)}
}

func numberField(name string, value any) model.CustomField {
	return model.CustomField{ID: "f-" + name, Name: name, Type: model.FieldTypeNumber, Value: rawJSON(value)}
}

func dateField(name string, t time.Time) model.CustomField {
	return model.CustomField{
		ID:    "f-" + name,
		Name:  name,
		Type:  model.FieldTypeDate,
		Value: rawJSON(strconv.FormatInt(t.UnixMilli(), 10)),
	}
}

func dropDownField(name string, value any, options ...string) model.CustomField {
	opts := make([]model.FieldOption, len(options))
	for i, o := range options {
		opts[i] = model.FieldOption{ID: "opt-" + o, Name: o, OrderIndex: i}
	}
	return model.CustomField{ID: "f-" + name, Name: name, Type: model.FieldTypeDropDown, Options: opts, Value: rawJSON(value)}
}

func usersField(name string, users ...map[string]any) model.CustomField {
	return model.CustomField{ID: "f-" + name, Name: name, Type: model.FieldTypeUsers, Value: rawJSON(users)}
}

func user(id int, username string) map[string]any {
	return map[string]any{"id": id, "username": username}
}

func testIncentives() *config.Incentives {
	inc := config.DefaultIncentives()
	inc.Aliases = map[string]string{"ana.s": "Ana Souza"}
	return &inc
}
