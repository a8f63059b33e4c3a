// Package docs registers the OpenAPI document for the seeder status API.
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/v1/seed/runs": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["seed"],
                "summary": "Trigger one seed run",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {"$ref": "#/definitions/TriggerRunRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Every declaration published", "schema": {"$ref": "#/definitions/SeedRunResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "502": {"description": "Document persist failed or a declaration was not published", "schema": {"$ref": "#/definitions/SeedRunResponse"}},
                    "503": {"description": "Queue could not be resolved", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/seed/runs/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["seed"],
                "summary": "Most recent seed run",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SeedRunResponse"}},
                    "404": {"description": "No run recorded yet", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "TriggerRunRequest": {
            "type": "object",
            "properties": {
                "declaration_count": {"type": "integer", "minimum": 0}
            }
        },
        "DeclarationOutcome": {
            "type": "object",
            "properties": {
                "sequence": {"type": "integer"},
                "content_declaration_id": {"type": "string"},
                "state": {"type": "string", "enum": ["published", "publish_failed", "persist_failed"]},
                "message_id": {"type": "string"},
                "sequence_number": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "SeedRunResponse": {
            "type": "object",
            "properties": {
                "remittance_document_id": {"type": "string"},
                "document_persisted": {"type": "boolean"},
                "document_error": {"type": "string"},
                "succeeded": {"type": "boolean"},
                "published_count": {"type": "integer"},
                "declarations": {"type": "array", "items": {"$ref": "#/definitions/DeclarationOutcome"}},
                "started_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "dceseed seeder API",
	Description:      "Status and trigger endpoints for remittance document seed runs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
