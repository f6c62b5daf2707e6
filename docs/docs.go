package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "description": "REST API for network service fingerprinting.",
    "title": "Service Detection API",
    "termsOfService": "http://swagger.io/terms/",
    "contact": {
      "email": "support@swagger.io",
      "name": "API Support",
      "url": "http://www.swagger.io/support"
    },
    "license": {
      "name": "MIT",
      "url": "https://opensource.org/licenses/MIT"
    },
    "version": "1.0"
  },
  "host": "localhost:8080",
  "basePath": "/",
  "schemes": [
    "http"
  ],
  "paths": {
    "/detections": {
      "post": {
        "consumes": [
          "application/json"
        ],
        "produces": [
          "application/json"
        ],
        "summary": "Submit a service detection job",
        "description": "Queues a single host:port for probe-based service detection.",
        "operationId": "createDetection",
        "tags": [
          "detections"
        ],
        "security": [
          {
            "ApiKeyAuth": []
          }
        ],
        "parameters": [
          {
            "description": "detection target",
            "name": "request",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreateDetectionRequest"
            }
          }
        ],
        "responses": {
          "202": {
            "description": "detection task accepted",
            "schema": {
              "$ref": "#/definitions/DetectionAcceptedResponse"
            }
          },
          "400": {
            "description": "invalid request payload",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "401": {
            "description": "unauthorized",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "429": {
            "description": "rate limit exceeded",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "500": {
            "description": "internal server error",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          }
        }
      }
    },
    "/detections/{id}": {
      "get": {
        "produces": [
          "application/json"
        ],
        "summary": "Fetch a detection job's status and result",
        "description": "Retrieves the complete details of a detection task by its ID.",
        "operationId": "getDetection",
        "tags": [
          "detections"
        ],
        "security": [
          {
            "ApiKeyAuth": []
          }
        ],
        "parameters": [
          {
            "type": "string",
            "description": "detection task ID (UUID v4)",
            "name": "id",
            "in": "path",
            "required": true
          }
        ],
        "responses": {
          "200": {
            "description": "detection task with result",
            "schema": {
              "$ref": "#/definitions/DetectionTask"
            }
          },
          "400": {
            "description": "malformed task id",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "404": {
            "description": "task not found",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "401": {
            "description": "unauthorized",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "429": {
            "description": "rate limit exceeded",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          },
          "500": {
            "description": "internal server error",
            "schema": {
              "$ref": "#/definitions/ErrorResponse"
            }
          }
        }
      }
    },
    "/healthz": {
      "get": {
        "produces": [
          "application/json"
        ],
        "summary": "Liveness probe",
        "operationId": "healthz",
        "tags": [
          "ops"
        ],
        "responses": {
          "200": {
            "description": "service is up"
          }
        }
      }
    }
  },
  "securityDefinitions": {
    "ApiKeyAuth": {
      "type": "apiKey",
      "name": "Authorization",
      "in": "header"
    }
  },
  "definitions": {
    "DetectionAcceptedResponse": {
      "type": "object",
      "properties": {
        "id": {
          "type": "string",
          "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"
        },
        "status": {
          "type": "string",
          "example": "pending"
        }
      },
      "additionalProperties": false
    },
    "CreateDetectionRequest": {
      "type": "object",
      "required": [
        "host",
        "port",
        "protocol"
      ],
      "properties": {
        "host": {
          "type": "string",
          "example": "scanme.nmap.org"
        },
        "port": {
          "type": "integer",
          "format": "int32",
          "example": 80
        },
        "protocol": {
          "type": "string",
          "enum": [
            "tcp",
            "udp"
          ],
          "example": "tcp"
        }
      },
      "additionalProperties": false
    },
    "ErrorResponse": {
      "type": "object",
      "properties": {
        "code": {
          "type": "string",
          "example": "invalid_request"
        },
        "message": {
          "type": "string",
          "example": "failed to queue task"
        }
      },
      "additionalProperties": false
    },
    "DetectionTask": {
      "type": "object",
      "properties": {
        "completed_at": {
          "type": "string",
          "format": "date-time"
        },
        "created_at": {
          "type": "string",
          "format": "date-time",
          "example": "2024-01-02T15:04:05Z"
        },
        "error": {
          "type": "string",
          "example": "failed to queue task"
        },
        "host": {
          "type": "string",
          "example": "scanme.nmap.org"
        },
        "port": {
          "type": "integer",
          "format": "int32",
          "example": 80
        },
        "protocol": {
          "type": "string",
          "example": "tcp"
        },
        "service": {
          "type": "string",
          "example": "http",
          "x-nullable": true
        },
        "banner": {
          "type": "string",
          "x-nullable": true
        },
        "id": {
          "type": "string",
          "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"
        },
        "status": {
          "type": "string",
          "example": "pending"
        }
      },
      "additionalProperties": false
    }
  }
}
`

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

type swaggerDoc struct{}

func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}
