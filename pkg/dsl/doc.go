/*
Package dsl provides a fluent builder for conversation flows.

	b := dsl.New()
	b.Add("ask_name").
		Say("Como posso te chamar?").
		Input(domain.FieldName).
		Validate(domain.ValidateName).
		Go("done")
	b.Add("done").Say("Obrigado!").Terminal()

	table, err := b.Build(flow.Entries{Cold: "ask_name"})
*/
package dsl
