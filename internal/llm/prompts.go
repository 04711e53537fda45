package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// PromptKind names one of the generation tasks the chatbot performs.
type PromptKind string

const (
	KindGreeting             PromptKind = "greeting"
	KindIntent               PromptKind = "intent"
	KindClarification        PromptKind = "clarification"
	KindMedicalQuestion      PromptKind = "medical_question"
	KindLocationCollection   PromptKind = "location_collection"
	KindDoctorDisplay        PromptKind = "doctor_display"
	KindDoctorSelection      PromptKind = "doctor_selection"
	KindSlotAvailability     PromptKind = "slot_availability"
	KindDepartmentSuggestion PromptKind = "department_suggestion"
	KindReportSummary        PromptKind = "report_summary"
	KindOfflineReport        PromptKind = "offline_report"
)

type promptSpec struct {
	required []string
	tmpl     *template.Template
}

func mustPrompt(kind PromptKind, text string, required ...string) promptSpec {
	return promptSpec{
		required: required,
		tmpl:     template.Must(template.New(string(kind)).Option("missingkey=error").Parse(text)),
	}
}

var prompts = map[PromptKind]promptSpec{
	KindGreeting: mustPrompt(KindGreeting, `You are a medical assistant greeting a new user.

Instructions:
- Generate a warm, professional greeting in {{.language}}.
- Mention that you can help with medical diagnosis questions or with booking a doctor appointment.
- Ask the user to choose between diagnosis and appointment booking.
- Keep it natural and conversational. Do not present rigid lettered options.

Generate the greeting message.`, "language"),

	KindIntent: mustPrompt(KindIntent, `You are an intent detection agent. Analyze the user's message and determine their intent.

User message: {{.user_input}}
Current conversation context: {{.context}}

Possible intents:
1. DIAGNOSIS - the user wants medical diagnosis, symptom analysis, or health questions.
2. APPOINTMENT - the user wants to book an appointment, find a doctor, or schedule a consultation.
3. SWITCH_TO_APPOINTMENT - the user is in a diagnosis conversation but now asks about doctors, departments, or booking.
4. SWITCH_TO_DIAGNOSIS - the user is in a booking conversation but now describes a health problem or asks medical questions.
5. UNCLEAR - the intent cannot be determined.

Return ONLY one of these words: DIAGNOSIS, APPOINTMENT, SWITCH_TO_APPOINTMENT, SWITCH_TO_DIAGNOSIS, or UNCLEAR`, "user_input", "context"),

	KindClarification: mustPrompt(KindClarification, `You are a medical assistant. The user's last message did not make their goal clear.

User message: {{.user_input}}

Politely ask, in {{.language}}, whether they would like help with a medical diagnosis or with booking a doctor appointment. Keep it to one or two sentences.`, "user_input", "language"),

	KindMedicalQuestion: mustPrompt(KindMedicalQuestion, `You are a professional medical assistant gathering information about a patient's condition.

Questions asked so far: {{.question_count}}/{{.question_limit}}

Instructions:
- If fewer than {{.question_limit}} questions have been asked, generate the next multiple-choice question with exactly 4 options labeled A, B, C, D.
- Do not repeat earlier questions or their answers.
- Each option must include EHR-specific terminology in parentheses, as in "A. Description (EHR Term)".
- Put the question and each option on its own line.
- Write everything in {{.language}}.
- If {{.question_limit}} or more questions have been asked, do not generate another question. Instead recommend consulting a doctor and tell the user to type "Book Appointment" to proceed.

Conversation history:
{{.conversation_history}}

Return the appropriate response.`, "question_count", "question_limit", "language", "conversation_history"),

	KindLocationCollection: mustPrompt(KindLocationCollection, `You are a location and preference collection agent for appointment booking.

Conversation: {{.conversation_history}}
User input: {{.user_input}}

Current status:
- City collected: {{.city_status}}
- Department/doctor preference collected: {{.preference_status}}

Instructions:
1. If the city is missing, ask for the user's city in a friendly way.
2. If the department or doctor preference is missing, ask the user to name either a department or a specific doctor.
3. If both are collected, confirm them and say you will search for doctors.
4. Never invent city or department names. Use only the user's own words.

Available cities: Kanpur, Orai, Jhansi

Ask one thing at a time and respond in {{.language}}.`, "conversation_history", "user_input", "city_status", "preference_status", "language"),

	KindDoctorDisplay: mustPrompt(KindDoctorDisplay, `You are displaying doctor search results so the user can choose.

Search criteria: {{.search_criteria}}
City: {{.city}}
Doctors found:
{{.doctors_info}}

Instructions:
- Present ALL doctors found, with name, department, location, and timings.
- Never invent a doctor or add details beyond the list above.
- After the list, ask which doctor the user would like to book.
- If the list is empty, ask for a different department or doctor name and suggest checking the spelling.
- Respond in {{.language}}.`, "search_criteria", "city", "doctors_info", "language"),

	KindDoctorSelection: mustPrompt(KindDoctorSelection, `You are a doctor selection assistant.

User's message: {{.user_input}}
Available doctors: {{.doctors_info}}

Instructions:
- Work out which doctor the user wants, from names, numbers, or clear preferences in their message.
- If the choice is clear, confirm it and ask them to confirm the booking.
- If unclear, ask them to specify which doctor they prefer.
- Stay focused on selection. Do not add information of your own.
- Respond in {{.language}}.`, "user_input", "doctors_info", "language"),

	KindSlotAvailability: mustPrompt(KindSlotAvailability, `You are a time slot booking assistant.

Selected doctor: Dr. {{.doctor_name}} - {{.doctor_department}}
User's message: {{.user_input}}

Available time slots:
{{.available_slots}}

Instructions:
- Show the available dates and times for the selected doctor, grouped by date, nearest dates first.
- Only present slots from the list above. Never invent a slot.
- If the user has not picked a date and time yet, ask them to choose one.
- If the user picked one, confirm their choice and ask them to confirm the booking.
- Respond in {{.language}}.`, "doctor_name", "doctor_department", "user_input", "available_slots", "language"),

	KindDepartmentSuggestion: mustPrompt(KindDepartmentSuggestion, `Analyze this health conversation and suggest ONE most relevant medical department from:
Cardiology, Neurology, General Medicine, Orthopedics, Dermatology, ENT, Psychiatry, Gynecology, Gastroenterology.

Conversation:
{{.conversation_history}}

Return ONLY the department name.`, "conversation_history"),

	KindReportSummary: mustPrompt(KindReportSummary, `Generate a professional pre-medical consultation assessment report in {{.language}} with these sections:

Questions and Responses
- List every question asked during the consultation with its options A to D, each on its own line.
- Show the patient's selected option in bold on its own line.
- Do not invent questions beyond those in the conversation below.

Patient Summary
- Summarize the patient's condition based on their answers, citing the relevant questions.

Assessment
- Evaluate the described symptoms and note any areas of concern, consistent with the answers.

Recommendations
- Classify the case as High Risk, Medium Risk, or Low Risk and justify the classification.

Use bold headings, clear spacing, and concise professional language.

Conversation:
{{.conversation_history}}`, "language", "conversation_history"),

	KindOfflineReport: mustPrompt(KindOfflineReport, `Based on the following patient details:

- Age: {{.age}}
- Gender: {{.gender}}
- Problem: {{.department}}
- Responses: {{.responses}}

Generate 5 multiple-choice questions in {{.language}} to gather information about the patient's condition, each with exactly 4 options and EHR-specific terminology in parentheses. Flag high risk indicators. Then provide a concise professional summary for doctor review.`, "age", "gender", "department", "responses", "language"),
}

// RenderPrompt fills a prompt template. Every required variable must be
// present; extra variables are ignored by templates that do not use them.
func RenderPrompt(kind PromptKind, vars map[string]string) (string, error) {
	spec, ok := prompts[kind]
	if !ok {
		return "", fmt.Errorf("llm: unknown prompt kind %q", kind)
	}
	for _, name := range spec.required {
		if _, present := vars[name]; !present {
			return "", fmt.Errorf("llm: prompt %s missing variable %q", kind, name)
		}
	}
	var sb strings.Builder
	if err := spec.tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("llm: prompt %s render failed: %w", kind, err)
	}
	return sb.String(), nil
}
