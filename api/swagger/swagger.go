package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Darsa API",
        "description": "Schedule allocation and windowed attendance marking for multi-tenant schools",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Schedules", "description": "Admin slot allocation with conflict detection"},
        {"name": "Attendance", "description": "Teacher attendance marking inside the class window"},
        {"name": "Dashboard", "description": "Teacher daily view"}
    ],
    "paths": {
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedule slots",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Allocate a schedule slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot or teacher conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{id}": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Remove a schedule slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/classes/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Class occurrence details with marking window state and roster",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not assigned to this teacher", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/classes/{id}/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit attendance for a class occurrence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Outside marking window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already marked today", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/classes/{id}/register": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export the attendance register for one occurrence",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "description": "YYYY-MM-DD, defaults to today"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Register file"},
                    "404": {"description": "No records for the occurrence", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Teacher daily dashboard",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSlotRequest": {
            "type": "object",
            "properties": {
                "grade": {"type": "integer"},
                "section": {"type": "string"},
                "day_of_week": {"type": "string"},
                "period": {"type": "integer"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "10:00"},
                "subject_id": {"type": "string"},
                "subject_name": {"type": "string"},
                "teacher_id": {"type": "string"},
                "teacher_name": {"type": "string"}
            }
        },
        "SubmitAttendanceRequest": {
            "type": "object",
            "properties": {
                "statuses": {
                    "type": "object",
                    "additionalProperties": {"type": "string", "enum": ["present", "absent", "late"]}
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
