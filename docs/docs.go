// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"], "summary": "Create an account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid input"}, "409": {"description": "Email already exists"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"], "summary": "Exchange credentials for a bearer token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/token"}}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/calendars": {
            "get": {"tags": ["calendars"], "summary": "List the caller's calendars", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["calendars"], "summary": "Create a calendar", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/calendars/{id}": {
            "get": {"tags": ["calendars"], "summary": "Get a calendar", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["calendars"], "summary": "Rename or recolor a calendar", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Version conflict"}}},
            "delete": {"tags": ["calendars"], "summary": "Delete a calendar with its habits and completions", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/calendars/{id}/month": {
            "get": {
                "tags": ["calendars"], "summary": "Month grid of a calendar with per-habit stats", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "query", "name": "month", "type": "string", "description": "YYYY-MM"},
                    {"in": "query", "name": "tz", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calendars/{id}/habits": {
            "get": {"tags": ["habits"], "summary": "List habits of a calendar", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["habits"], "summary": "Add a habit to a calendar", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/habits/sync": {
            "get": {"tags": ["habits"], "summary": "Habits changed since the last sync", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "last_sync", "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/habits/{id}": {
            "get": {"tags": ["habits"], "summary": "Get a habit", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["habits"], "summary": "Edit or reorder a habit", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Version conflict"}}},
            "delete": {"tags": ["habits"], "summary": "Delete a habit", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/habits/{id}/completions/toggle": {
            "post": {"tags": ["completions"], "summary": "Mark or unmark a habit as done on a local date", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid or future date"}}}
        },
        "/habits/{id}/completions": {
            "get": {"tags": ["completions"], "summary": "Completions of a habit in [from, to)", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "query", "name": "from", "type": "string"}, {"in": "query", "name": "to", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["completions"], "summary": "Record a completion", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/completions/sync": {
            "get": {"tags": ["completions"], "summary": "Completions changed since the last sync", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "since", "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/overview": {
            "get": {
                "tags": ["overview"], "summary": "Yearly contribution heat map", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "tz", "type": "string"},
                    {"in": "query", "name": "calendar_id", "type": "string"},
                    {"in": "query", "name": "habit_id", "type": "string"},
                    {"in": "query", "name": "lang", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid time zone"}}
            }
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 8}}
        },
        "token": {
            "type": "object",
            "properties": {"access_token": {"type": "string"}, "token_type": {"type": "string"}, "expires_in": {"type": "integer"}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Calendar API",
	Description:      "Habit calendars, completions and the yearly contribution heat map.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
