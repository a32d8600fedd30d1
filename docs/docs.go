// Package docs holds the OpenAPI document served at /swagger. Regenerate it
// with `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "User login",
                "parameters": [
                    {"type": "string", "name": "username", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "JWT token and user info", "schema": {"$ref": "#/definitions/response.TokenResponse"}},
                    "401": {"description": "Invalid username or password", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/schemas": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["schemas"],
                "summary": "List form definitions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schemas/{id}/visibility": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schemas"],
                "summary": "Evaluate field visibility",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "form does not exist", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/submissions/{formType}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["forms"],
                "summary": "Submit a form",
                "parameters": [
                    {"type": "string", "name": "formType", "in": "path", "required": true},
                    {"type": "string", "name": "values", "in": "formData"},
                    {"type": "string", "name": "os", "in": "query"},
                    {"type": "string", "name": "originatingFormId", "in": "query"},
                    {"type": "string", "name": "chain", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"description": "form does not exist", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Field validation failed", "schema": {"$ref": "#/definitions/response.ValidationErrorResponse"}},
                    "502": {"description": "File storage failed", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/forms": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["forms"],
                "summary": "List submitted forms",
                "parameters": [
                    {"type": "string", "name": "form_type", "in": "query"},
                    {"type": "string", "name": "os_number", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "user_id", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "response.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "response.FieldErrorItem": {
            "type": "object",
            "properties": {"field_id": {"type": "string"}, "message": {"type": "string"}}
        },
        "response.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/response.FieldErrorItem"}}
            }
        },
        "response.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Field Report API",
	Description:      "Dynamic field report forms with linked workflows, file storage and exports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
