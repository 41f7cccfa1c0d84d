package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sekolah HR API",
        "description": "Scheduling core: weekly timetables, monthly generation, override resolution",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Time Slots", "description": "Lesson period catalog"},
        {"name": "Weekly Schedules", "description": "Recurring timetable entries and conflict detection"},
        {"name": "Conflicts", "description": "Conflict findings and resolution"},
        {"name": "Locks", "description": "Schedule lock lifecycle"},
        {"name": "Monthly Schedules", "description": "Monthly generation jobs and per-date rows"},
        {"name": "Teaching Schedules", "description": "Teaching blocks, substitutes and workload"},
        {"name": "Holidays", "description": "Holiday calendar and schedule stamping"},
        {"name": "Effective Schedules", "description": "Resolved per-employee daily schedule"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeslots": {
            "get": {
                "tags": ["Time Slots"],
                "summary": "List active time slots",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Time Slots"],
                "summary": "Create time slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimeSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeslots/{id}": {
            "get": {
                "tags": ["Time Slots"],
                "summary": "Get time slot",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Time Slots"],
                "summary": "Deactivate time slot",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules/weekly": {
            "get": {
                "tags": ["Weekly Schedules"],
                "summary": "List weekly schedules",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "timeSlotId", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Weekly Schedules"],
                "summary": "Create weekly schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWeeklyScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocking conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/weekly/{id}": {
            "get": {
                "tags": ["Weekly Schedules"],
                "summary": "Get weekly schedule",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Weekly Schedules"],
                "summary": "Update weekly schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateWeeklyScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocking conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "423": {"description": "Schedule locked"}
                }
            },
            "delete": {
                "tags": ["Weekly Schedules"],
                "summary": "Deactivate weekly schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "reason", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules/weekly/{id}/history": {
            "get": {
                "tags": ["Weekly Schedules"],
                "summary": "Change history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/weekly/{id}/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Conflicts recorded for one schedule",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/weekly/{id}/lock": {
            "get": {
                "tags": ["Locks"],
                "summary": "Lock status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Locks"],
                "summary": "Lock schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LockScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already locked"}
                }
            },
            "delete": {
                "tags": ["Locks"],
                "summary": "Unlock schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/locks/cleanup": {
            "post": {
                "tags": ["Locks"],
                "summary": "Release expired locks",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List unresolved conflicts",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/{id}/resolve": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Resolve conflict",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveConflictRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/classes/{id}/grid": {
            "get": {
                "tags": ["Weekly Schedules"],
                "summary": "Class timetable grid",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/grid/export/csv": {
            "get": {
                "tags": ["Weekly Schedules"],
                "summary": "Export class timetable as CSV",
                "produces": ["text/csv"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/classes/{id}/grid/export/pdf": {
            "get": {
                "tags": ["Weekly Schedules"],
                "summary": "Export class timetable as PDF",
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/schedules/monthly": {
            "get": {
                "tags": ["Monthly Schedules"],
                "summary": "List monthly schedules",
                "parameters": [
                    {"name": "locationId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Monthly Schedules"],
                "summary": "Create monthly schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMonthlyScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/monthly/{id}": {
            "get": {
                "tags": ["Monthly Schedules"],
                "summary": "Get monthly schedule",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Monthly Schedules"],
                "summary": "Deactivate monthly schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules/monthly/{id}/assign": {
            "post": {
                "tags": ["Monthly Schedules"],
                "summary": "Generate rows for one employee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignEmployeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/monthly/{id}/assign/bulk": {
            "post": {
                "tags": ["Monthly Schedules"],
                "summary": "Generate rows for many employees",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkAssignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/monthly/{id}/finalize": {
            "post": {
                "tags": ["Monthly Schedules"],
                "summary": "Finalize and fan out attendance placeholders",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/monthly/{id}/rows": {
            "get": {
                "tags": ["Monthly Schedules"],
                "summary": "List generated rows",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/rows/{id}/revert": {
            "post": {
                "tags": ["Monthly Schedules"],
                "summary": "Revert an overridden row to its original shift",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/RevertOverrideRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/teaching": {
            "get": {
                "tags": ["Teaching Schedules"],
                "summary": "List teaching schedules",
                "parameters": [
                    {"name": "teacherId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "dayOfWeek", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teaching Schedules"],
                "summary": "Create teaching schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeachingScheduleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/teaching/{id}": {
            "get": {
                "tags": ["Teaching Schedules"],
                "summary": "Get teaching schedule",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Teaching Schedules"],
                "summary": "Update teaching schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTeachingScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teaching Schedules"],
                "summary": "Deactivate teaching schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedules/teaching/{id}/apply": {
            "post": {
                "tags": ["Teaching Schedules"],
                "summary": "Apply teaching override to generated rows",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/teaching/{id}/substitute": {
            "post": {
                "tags": ["Teaching Schedules"],
                "summary": "Assign substitute teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSubstituteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Substitute unavailable"}
                }
            },
            "delete": {
                "tags": ["Teaching Schedules"],
                "summary": "Remove substitute teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/workload": {
            "get": {
                "tags": ["Teaching Schedules"],
                "summary": "Teacher weekly workload summary",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays": {
            "get": {
                "tags": ["Holidays"],
                "summary": "List holidays",
                "parameters": [
                    {"name": "locationId", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Holidays"],
                "summary": "Create holiday",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateHolidayRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{id}": {
            "get": {
                "tags": ["Holidays"],
                "summary": "Get holiday",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Holidays"],
                "summary": "Deactivate holiday",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/holidays/{id}/generate": {
            "post": {
                "tags": ["Holidays"],
                "summary": "Generate future instances of a recurring holiday",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRecurringRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{id}/preview": {
            "get": {
                "tags": ["Holidays"],
                "summary": "Preview schedule rows a holiday would override",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{id}/apply": {
            "post": {
                "tags": ["Holidays"],
                "summary": "Stamp a holiday onto generated schedule rows",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Holidays"],
                "summary": "Revert holiday stamps from generated schedule rows",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}/schedule": {
            "get": {
                "tags": ["Effective Schedules"],
                "summary": "Resolve the effective schedule for one date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees/{id}/schedule/range": {
            "get": {
                "tags": ["Effective Schedules"],
                "summary": "Resolve effective schedules for a date range",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateTimeSlotRequest": {
            "type": "object",
            "required": ["name", "start_time", "end_time", "slot_order"],
            "properties": {
                "name": {"type": "string"},
                "start_time": {"type": "string", "example": "07:00"},
                "end_time": {"type": "string", "example": "08:30"},
                "slot_order": {"type": "integer"}
            }
        },
        "CreateWeeklyScheduleRequest": {
            "type": "object",
            "required": ["academic_class_id", "subject_id", "employee_id", "time_slot_id", "day_of_week", "effective_from"],
            "properties": {
                "academic_class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "employee_id": {"type": "string"},
                "time_slot_id": {"type": "string"},
                "day_of_week": {"type": "string", "example": "monday"},
                "room": {"type": "string"},
                "effective_from": {"type": "string", "format": "date-time"},
                "effective_until": {"type": "string", "format": "date-time"},
                "force": {"type": "boolean"}
            }
        },
        "UpdateWeeklyScheduleRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "employee_id": {"type": "string"},
                "time_slot_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "room": {"type": "string"},
                "effective_until": {"type": "string", "format": "date-time"},
                "reason": {"type": "string"}
            }
        },
        "LockScheduleRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"},
                "locked_until": {"type": "string", "format": "date-time"}
            }
        },
        "ResolveConflictRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "CreateMonthlyScheduleRequest": {
            "type": "object",
            "required": ["name", "month", "year", "start_date", "end_date", "default_start_time", "default_end_time", "location_id"],
            "properties": {
                "name": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "default_start_time": {"type": "string", "example": "08:00"},
                "default_end_time": {"type": "string", "example": "16:00"},
                "work_days": {"type": "array", "items": {"type": "string"}},
                "location_id": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "AssignEmployeeRequest": {
            "type": "object",
            "required": ["employee_id"],
            "properties": {
                "employee_id": {"type": "string"}
            }
        },
        "BulkAssignRequest": {
            "type": "object",
            "required": ["employee_ids"],
            "properties": {
                "employee_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "RevertOverrideRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "CreateTeachingScheduleRequest": {
            "type": "object",
            "required": ["teacher_id", "subject_id", "day_of_week", "teaching_start_time", "teaching_end_time", "effective_from"],
            "properties": {
                "teacher_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "day_of_week": {"type": "string"},
                "teaching_start_time": {"type": "string", "example": "10:00"},
                "teaching_end_time": {"type": "string", "example": "12:00"},
                "effective_from": {"type": "string", "format": "date-time"},
                "effective_until": {"type": "string", "format": "date-time"},
                "class_name": {"type": "string"},
                "room": {"type": "string"},
                "student_count": {"type": "integer"},
                "override_attendance": {"type": "boolean"},
                "strict_timing": {"type": "boolean"},
                "late_threshold_minutes": {"type": "integer"},
                "monthly_schedule_id": {"type": "string"}
            }
        },
        "UpdateTeachingScheduleRequest": {
            "type": "object",
            "properties": {
                "teaching_start_time": {"type": "string"},
                "teaching_end_time": {"type": "string"},
                "effective_until": {"type": "string", "format": "date-time"},
                "class_name": {"type": "string"},
                "room": {"type": "string"},
                "override_attendance": {"type": "boolean"}
            }
        },
        "AssignSubstituteRequest": {
            "type": "object",
            "required": ["substitute_id", "start_date", "end_date", "reason"],
            "properties": {
                "substitute_id": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "reason": {"type": "string"}
            }
        },
        "CreateHolidayRequest": {
            "type": "object",
            "required": ["name", "holiday_date", "type"],
            "properties": {
                "name": {"type": "string"},
                "holiday_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "type": {"type": "string", "enum": ["national", "regional", "religious", "school", "custom"]},
                "description": {"type": "string"},
                "location_id": {"type": "string"},
                "is_recurring": {"type": "boolean"},
                "force_override": {"type": "boolean"},
                "paid_leave": {"type": "boolean"},
                "recurrence": {"$ref": "#/definitions/RecurrenceRequest"}
            }
        },
        "RecurrenceRequest": {
            "type": "object",
            "required": ["frequency", "month", "day_of_month"],
            "properties": {
                "frequency": {"type": "string", "enum": ["yearly"]},
                "month": {"type": "integer"},
                "day_of_month": {"type": "integer"},
                "exceptions": {"type": "array", "items": {"type": "string"}},
                "end_date": {"type": "string"}
            }
        },
        "GenerateRecurringRequest": {
            "type": "object",
            "required": ["years"],
            "properties": {
                "years": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
