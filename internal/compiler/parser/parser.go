package parser

import (
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/lexer"
)

// Parser transforms a stream of tokens into a declaration tree
type Parser struct {
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a new parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		errors:  make([]ParseError, 0),
	}
}

// ParseSource scans and parses one declaration file. Lexical errors do not
// stop parsing; the offending characters are skipped.
func ParseSource(source string) (*ast.Program, []lexer.LexError, []ParseError) {
	tokens, lexErrors := lexer.New(source).ScanTokens()
	program, parseErrors := New(tokens).Parse()
	return program, lexErrors, parseErrors
}

// Parse parses the token stream and returns the AST and any errors
func (p *Parser) Parse() (*ast.Program, []ParseError) {
	program := &ast.Program{
		Schemas: make([]*ast.SchemaDecl, 0),
		Enums:   make([]*ast.EnumDecl, 0),
	}

	if p.check(lexer.TOKEN_PACKAGE) {
		packageToken := p.advance()
		nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected package name after 'package'")
		if nameToken.Type != lexer.TOKEN_ERROR {
			program.Package = nameToken.Lexeme
			program.PackageLoc = ast.TokenLocation(packageToken)
		}
	}

	for !p.isAtEnd() {
		p.parseDeclaration(program)
	}

	return program, p.errors
}

// parseDeclaration parses one annotated schema or enum
func (p *Parser) parseDeclaration(program *ast.Program) {
	annotations := p.parseAnnotations()

	switch {
	case p.check(lexer.TOKEN_SCHEMA):
		if schema := p.parseSchema(annotations); schema != nil {
			program.Schemas = append(program.Schemas, schema)
		}
	case p.check(lexer.TOKEN_ENUM):
		if enum := p.parseEnum(annotations); enum != nil {
			program.Enums = append(program.Enums, enum)
		}
	case p.isAtEnd():
		if len(annotations) > 0 {
			p.error(p.peek(), "Expected 'schema' or 'enum' after annotations")
		}
	case p.check(lexer.TOKEN_PACKAGE):
		p.error(p.peek(), "The package clause must come before any declaration")
		p.advance()
		p.synchronize()
	default:
		p.error(p.peek(), fmt.Sprintf("Expected 'schema' or 'enum', found '%s'", p.peek().Lexeme))
		p.advance()
		p.synchronize()
	}
}

// parseSchema parses `schema Name { ... }`
func (p *Parser) parseSchema(annotations []*ast.Annotation) *ast.SchemaDecl {
	schemaToken := p.advance()

	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected schema name")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronize()
		return nil
	}

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), "Expected '{' after schema name")
		p.synchronize()
		return nil
	}

	schema := &ast.SchemaDecl{
		Name:        nameToken.Lexeme,
		Annotations: annotations,
		Types:       make([]*ast.TypeSlotDecl, 0),
		Fields:      make([]*ast.FieldDecl, 0),
		Loc:         ast.TokenLocation(schemaToken),
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		memberAnnotations := p.parseAnnotations()

		switch {
		case p.check(lexer.TOKEN_TYPE):
			if len(memberAnnotations) > 0 {
				p.error(annotationToken(memberAnnotations[0]), "Annotations are not allowed on associated types")
			}
			if slot := p.parseTypeSlot(); slot != nil {
				schema.Types = append(schema.Types, slot)
			}
		case p.check(lexer.TOKEN_IDENTIFIER):
			if field := p.parseField(memberAnnotations); field != nil {
				schema.Fields = append(schema.Fields, field)
			}
		case p.check(lexer.TOKEN_RBRACE) || p.isAtEnd():
			if len(memberAnnotations) > 0 {
				p.error(p.peek(), "Expected a field after annotations")
			}
		default:
			p.error(p.peek(), fmt.Sprintf("Unexpected token in schema body: %s", p.peek().Lexeme))
			p.advance()
			p.synchronizeToNextField()
		}
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), "Expected '}' after schema body")
	}

	return schema
}

// parseTypeSlot parses `type Name: Bound [+ Bound]`
func (p *Parser) parseTypeSlot() *ast.TypeSlotDecl {
	typeToken := p.advance()

	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected associated type name after 'type'")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronizeToNextField()
		return nil
	}

	slot := &ast.TypeSlotDecl{
		Name:   nameToken.Lexeme,
		Bounds: make([]*ast.PathNode, 0),
		Loc:    ast.TokenLocation(typeToken),
	}

	if !p.match(lexer.TOKEN_COLON) {
		return slot
	}

	for {
		bound := p.parsePath("Expected a schema bound after ':'")
		if bound == nil {
			p.synchronizeToNextField()
			return nil
		}
		slot.Bounds = append(slot.Bounds, bound)

		if !p.match(lexer.TOKEN_PLUS) {
			break
		}
	}

	return slot
}

// parseField parses `name: ReturnType`
func (p *Parser) parseField(annotations []*ast.Annotation) *ast.FieldDecl {
	nameToken := p.advance()

	if !p.match(lexer.TOKEN_COLON) {
		p.error(p.peek(), fmt.Sprintf("Expected ':' after field name '%s'", nameToken.Lexeme))
		p.synchronizeToNextField()
		return nil
	}

	returnType := p.parseReturnType()
	if returnType == nil {
		p.synchronizeToNextField()
		return nil
	}

	return &ast.FieldDecl{
		Name:        nameToken.Lexeme,
		Return:      returnType,
		Annotations: annotations,
		Loc:         ast.TokenLocation(nameToken),
	}
}

// parseReturnType parses a primitive, a named type, `dyn X`, `iter dyn X` or `Self::X`
func (p *Parser) parseReturnType() *ast.ReturnTypeNode {
	start := p.peek()
	returnType := &ast.ReturnTypeNode{
		Shape: ast.ShapeNamed,
		Loc:   ast.TokenLocation(start),
	}

	switch {
	case p.match(lexer.TOKEN_ITER):
		if !p.match(lexer.TOKEN_DYN) {
			p.error(p.peek(), "Expected 'dyn' after 'iter'")
			return nil
		}
		returnType.Shape = ast.ShapeDynIter
		returnType.Path = p.parsePath("Expected a schema after 'iter dyn'")
	case p.match(lexer.TOKEN_DYN):
		returnType.Shape = ast.ShapeDyn
		returnType.Path = p.parsePath("Expected a schema after 'dyn'")
	case p.match(lexer.TOKEN_SELF):
		if !p.match(lexer.TOKEN_DOUBLE_COLON) {
			p.error(p.peek(), "Expected '::' after 'Self'")
			return nil
		}
		nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected associated type name after 'Self::'")
		if nameToken.Type == lexer.TOKEN_ERROR {
			return nil
		}
		returnType.Shape = ast.ShapeAssoc
		returnType.Path = &ast.PathNode{
			Segments: []string{nameToken.Lexeme},
			Loc:      ast.TokenLocation(nameToken),
		}
	default:
		returnType.Path = p.parsePath(fmt.Sprintf("Expected return type, found '%s'", start.Lexeme))
	}

	if returnType.Path == nil {
		return nil
	}
	return returnType
}

// parseEnum parses `enum Name: Schema { Record ... }`
func (p *Parser) parseEnum(annotations []*ast.Annotation) *ast.EnumDecl {
	enumToken := p.advance()

	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected enum name")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronize()
		return nil
	}

	enum := &ast.EnumDecl{
		Name:        nameToken.Lexeme,
		Annotations: annotations,
		Variants:    make([]*ast.VariantDecl, 0),
		Loc:         ast.TokenLocation(enumToken),
	}

	if p.match(lexer.TOKEN_COLON) {
		enum.Schema = p.parsePath("Expected the implemented schema after ':'")
		if enum.Schema == nil {
			p.synchronize()
			return nil
		}
	}

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), "Expected '{' after enum name")
		p.synchronize()
		return nil
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		variantAnnotations := p.parseAnnotations()

		if p.check(lexer.TOKEN_IDENTIFIER) {
			nameToken := p.advance()
			enum.Variants = append(enum.Variants, &ast.VariantDecl{
				Name:        nameToken.Lexeme,
				Annotations: variantAnnotations,
				Loc:         ast.TokenLocation(nameToken),
			})
			p.match(lexer.TOKEN_COMMA)
			continue
		}

		if p.check(lexer.TOKEN_RBRACE) || p.isAtEnd() {
			if len(variantAnnotations) > 0 {
				p.error(p.peek(), "Expected a record after annotations")
			}
			break
		}

		p.error(p.peek(), fmt.Sprintf("Unexpected token in enum body: %s", p.peek().Lexeme))
		p.advance()
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), "Expected '}' after enum body")
	}

	return enum
}

// parseAnnotations parses zero or more consecutive annotations
func (p *Parser) parseAnnotations() []*ast.Annotation {
	annotations := make([]*ast.Annotation, 0)

	for p.check(lexer.TOKEN_AT) {
		if annotation := p.parseAnnotation(); annotation != nil {
			annotations = append(annotations, annotation)
		} else {
			p.synchronizeAnnotation()
		}
	}

	return annotations
}

// parseAnnotation parses `@a::b` or `@a::b(arg, ...)`
func (p *Parser) parseAnnotation() *ast.Annotation {
	atToken := p.advance()

	first := p.consume(lexer.TOKEN_IDENTIFIER, "Expected annotation name after '@'")
	if first.Type == lexer.TOKEN_ERROR {
		return nil
	}

	annotation := &ast.Annotation{
		Path: []string{first.Lexeme},
		Args: make([]ast.ValueNode, 0),
		Loc:  ast.TokenLocation(atToken),
	}

	for p.match(lexer.TOKEN_DOUBLE_COLON) {
		segment := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier after '::' in annotation")
		if segment.Type == lexer.TOKEN_ERROR {
			return nil
		}
		annotation.Path = append(annotation.Path, segment.Lexeme)
	}

	if !p.match(lexer.TOKEN_LPAREN) {
		return annotation
	}
	annotation.HasParens = true

	args, ok := p.parseArguments(annotation.String())
	if !ok {
		return nil
	}
	annotation.Args = args

	return annotation
}

// parseArguments parses a comma separated value list after '(' up to and
// including the closing ')'. A trailing comma is allowed.
func (p *Parser) parseArguments(owner string) ([]ast.ValueNode, bool) {
	args := make([]ast.ValueNode, 0)

	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
		value := p.parseValue()
		if value == nil {
			return nil, false
		}
		args = append(args, value)

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if !p.match(lexer.TOKEN_RPAREN) {
		p.error(p.peek(), fmt.Sprintf("Expected ')' to close %s", owner))
		return nil, false
	}

	return args, true
}

// parseValue parses a literal, a path or a setting call such as preset(Serial)
func (p *Parser) parseValue() ast.ValueNode {
	token := p.peek()

	switch token.Type {
	case lexer.TOKEN_INT_LITERAL:
		p.advance()
		return &ast.LiteralNode{Kind: ast.LiteralInt, Text: literalText(token), Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_FLOAT_LITERAL:
		p.advance()
		return &ast.LiteralNode{Kind: ast.LiteralFloat, Text: literalText(token), Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_STRING_LITERAL:
		p.advance()
		return &ast.LiteralNode{Kind: ast.LiteralString, Text: literalText(token), Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_TRUE, lexer.TOKEN_FALSE:
		p.advance()
		return &ast.LiteralNode{
			Kind: ast.LiteralBool,
			Text: token.Lexeme,
			Bool: token.Type == lexer.TOKEN_TRUE,
			Loc:  ast.TokenLocation(token),
		}
	case lexer.TOKEN_MINUS:
		p.advance()
		number := p.peek()
		kind := ast.LiteralInt
		switch number.Type {
		case lexer.TOKEN_INT_LITERAL:
		case lexer.TOKEN_FLOAT_LITERAL:
			kind = ast.LiteralFloat
		default:
			p.error(number, "Expected a number after '-'")
			return nil
		}
		p.advance()
		return &ast.LiteralNode{Kind: kind, Text: "-" + literalText(number), Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_IDENTIFIER:
		if p.peekNext().Type == lexer.TOKEN_LPAREN {
			return p.parseCall()
		}
		return p.parsePath("Expected a value")
	default:
		p.error(token, fmt.Sprintf("Expected a value, found '%s'", token.Lexeme))
		return nil
	}
}

// parseCall parses `name(value, ...)`
func (p *Parser) parseCall() ast.ValueNode {
	nameToken := p.advance()
	p.advance() // (

	args, ok := p.parseArguments(nameToken.Lexeme + "(")
	if !ok {
		return nil
	}

	return &ast.CallNode{
		Name: nameToken.Lexeme,
		Args: args,
		Loc:  ast.TokenLocation(nameToken),
	}
}

// parsePath parses `Ident {:: Ident}`
func (p *Parser) parsePath(message string) *ast.PathNode {
	first := p.consume(lexer.TOKEN_IDENTIFIER, message)
	if first.Type == lexer.TOKEN_ERROR {
		return nil
	}

	path := &ast.PathNode{
		Segments: []string{first.Lexeme},
		Loc:      ast.TokenLocation(first),
	}

	for p.match(lexer.TOKEN_DOUBLE_COLON) {
		segment := p.consume(lexer.TOKEN_IDENTIFIER, "Expected identifier after '::'")
		if segment.Type == lexer.TOKEN_ERROR {
			return nil
		}
		path.Segments = append(path.Segments, segment.Lexeme)
	}

	return path
}

// Helper methods

// literalText returns the unescaped text of a literal token
func literalText(token lexer.Token) string {
	if s, ok := token.Literal.(string); ok {
		return s
	}
	return token.Lexeme
}

// annotationToken rebuilds a token pointing at an already parsed annotation
func annotationToken(annotation *ast.Annotation) lexer.Token {
	return lexer.Token{
		Type:   lexer.TOKEN_AT,
		Lexeme: annotation.String(),
		Line:   annotation.Loc.Line,
		Column: annotation.Loc.Column,
	}
}

// atFieldStart reports whether the next tokens read `name :`
func (p *Parser) atFieldStart() bool {
	return p.check(lexer.TOKEN_IDENTIFIER) && p.peekNext().Type == lexer.TOKEN_COLON
}

// Token stream navigation

// peek returns the current token without advancing
func (p *Parser) peek() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

// peekNext returns the token after the current one without advancing
func (p *Parser) peekNext() lexer.Token {
	if p.current+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current+1]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}

	p.error(p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// Error handling

// error records a parse error
func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, NewParseError(message, token))
}

// synchronize implements panic mode error recovery at declaration boundaries
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(lexer.TOKEN_SCHEMA) || p.check(lexer.TOKEN_ENUM) {
			return
		}
		// Annotations of the next declaration
		if p.check(lexer.TOKEN_AT) && p.previous().Type == lexer.TOKEN_RBRACE {
			return
		}

		p.advance()
	}
}

// synchronizeToNextField skips to the next member of a schema body
func (p *Parser) synchronizeToNextField() {
	for !p.isAtEnd() {
		if p.check(lexer.TOKEN_RBRACE) || p.check(lexer.TOKEN_AT) || p.check(lexer.TOKEN_TYPE) || p.atFieldStart() {
			return
		}

		p.advance()
	}
}

// synchronizeAnnotation skips the remains of a malformed annotation
func (p *Parser) synchronizeAnnotation() {
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_AT, lexer.TOKEN_SCHEMA, lexer.TOKEN_ENUM, lexer.TOKEN_TYPE, lexer.TOKEN_RBRACE:
			return
		}
		if p.atFieldStart() {
			return
		}

		p.advance()
	}
}
