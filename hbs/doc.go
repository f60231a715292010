// Package hbs compiles Handlebars-flavored templates into Go.
//
// A template is compiled in a single forward pass into a [Program]: a flat
// sequence of [Instruction] values that write literal text, write escaped or
// raw values, and open or close Go control-flow blocks. [Generate] wraps a
// program in a render method so that templates become ordinary compiled Go
// code with no runtime parsing.
//
// # Syntax
//
//	{{name}}              escaped value of name
//	{{{name}}}            raw value of name
//	{{format date fmt}}   call: format(date,fmt)
//	{{! comment }}        ignored
//	{{!-- {{comment}} --}}
//	\{{text}}             literal text
//	{{~name~}}            trim surrounding whitespace
//
// # Blocks
//
//	{{#if VAR}}                 if VAR {
//	{{#if some VAR}}            if VAR != nil {
//	{{#if some VAR as LOCAL}}   if LOCAL := VAR; LOCAL != nil {
//	{{#unless VAR}}             if !VAR {
//	{{#unless some VAR}}        if VAR == nil {
//	{{#each VAR as LOCAL}}      for _, LOCAL := range VAR {
//	{{#with VAR}}               (rebinds the context to VAR)
//	{{else}}                    } else {
//
// Every block closes with the name of its helper, e.g. {{/if}}.
//
// # Scoping
//
// Inside {{#with VAR}} names resolve as members of VAR. A leading "../"
// resolves a name one block further out. Names bound with "as" (and the
// default "this" of each) resolve unqualified in the blocks they enclose.
package hbs
