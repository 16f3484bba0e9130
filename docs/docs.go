// Package docs registers the voicechat OpenAPI document with swag.
//
// Regenerate with: swag init -g cmd/voicechat/main.go -o docs
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
        "/api/chatbot": {
            "post": {
                "description": "Accepts {\"text\": \"...\"} or {\"audio\": \"<base64>\"} depending on the deployment's input mode.\nThe input is (transcribed and) answered by the LLM, and the answer is synthesized to speech.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "chatbot"
                ],
                "summary": "Chat with the voice bot",
                "parameters": [
                    {
                        "description": "Chat request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/message.Request"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Reply text and base64 MPEG audio",
                        "schema": {
                            "$ref": "#/definitions/message.Reply"
                        }
                    },
                    "400": {
                        "description": "Missing or malformed input",
                        "schema": {
                            "$ref": "#/definitions/message.ErrorBody"
                        }
                    },
                    "405": {
                        "description": "Method not allowed",
                        "schema": {
                            "$ref": "#/definitions/message.ErrorBody"
                        }
                    },
                    "413": {
                        "description": "Request body too large",
                        "schema": {
                            "$ref": "#/definitions/message.ErrorBody"
                        }
                    },
                    "500": {
                        "description": "Configuration or internal error",
                        "schema": {
                            "$ref": "#/definitions/message.ErrorBody"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "message.ErrorBody": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "example": "No text provided."
                }
            }
        },
        "message.Reply": {
            "type": "object",
            "properties": {
                "audioBase64": {
                    "type": "string"
                },
                "botResponse": {
                    "type": "string"
                },
                "contentType": {
                    "type": "string",
                    "example": "audio/mpeg"
                },
                "text": {
                    "type": "string"
                }
            }
        },
        "message.Request": {
            "type": "object",
            "properties": {
                "audio": {
                    "type": "string"
                },
                "text": {
                    "type": "string",
                    "example": "Hello"
                }
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
	Title:            "voicechat API",
	Description:      "Voice chatbot backend: speech-to-text, LLM reply, text-to-speech.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
