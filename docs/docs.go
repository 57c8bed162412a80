// Package docs registers the Swagger document served at /swagger. Keep it
// in step with the handler annotations when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthResponse"}}}
            }
        },
        "/api/v1/config": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["config"],
                "summary": "Site configuration",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["config"],
                "summary": "Replace the site configuration",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/collections/{name}": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["collections"],
                "summary": "List a collection",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            },
            "put": {
                "security": [{"Bearer": []}],
                "tags": ["collections"],
                "summary": "Replace a collection",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/backup": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["backup"],
                "summary": "Download a full backup",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/backup/restore": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["backup"],
                "summary": "Restore a full backup",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/backup/archive": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["backup"],
                "summary": "Archive a backup to storage",
                "responses": {"201": {"description": "Created"}, "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/backup/preferences": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["backup"],
                "summary": "Download theme preferences",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/backup/preferences/restore": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["backup"],
                "summary": "Restore theme preferences",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/products/export": {
            "get": {
                "security": [{"Bearer": []}],
                "tags": ["products"],
                "summary": "Export products as XLSX",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/products/import": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "tags": ["products"],
                "summary": "Import products from XLSX",
                "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/images/sessions": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["images"],
                "summary": "Open an image edit session",
                "parameters": [{"type": "file", "name": "image", "in": "formData"}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/images/sessions/{session_id}": {
            "patch": {
                "security": [{"Bearer": []}],
                "tags": ["images"],
                "summary": "Adjust image parameters",
                "parameters": [{"type": "string", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            },
            "delete": {
                "security": [{"Bearer": []}],
                "tags": ["images"],
                "summary": "Cancel an edit session",
                "parameters": [{"type": "string", "name": "session_id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/v1/images/sessions/{session_id}/params/{name}": {
            "patch": {
                "security": [{"Bearer": []}],
                "tags": ["images"],
                "summary": "Set one image parameter",
                "parameters": [
                    {"type": "string", "name": "session_id", "in": "path", "required": true},
                    {"type": "string", "name": "name", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        },
        "/api/v1/images/sessions/{session_id}/preview": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["image/png"],
                "tags": ["images"],
                "summary": "Current preview",
                "parameters": [{"type": "string", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/images/sessions/{session_id}/save": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["images"],
                "summary": "Save the edited image",
                "parameters": [{"type": "string", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/images/sessions/{session_id}/remove-background": {
            "post": {
                "security": [{"Bearer": []}],
                "tags": ["images"],
                "summary": "Remove the image background",
                "parameters": [{"type": "string", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}}
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CRINF Backoffice API",
	Description:      "Administrative API for the CRINF store: image editing, full backups, product spreadsheets and site configuration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
