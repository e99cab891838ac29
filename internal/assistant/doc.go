// Package assistant é o endpoint protegido pelo rate limit: recebe uma pergunta,
// anexa o currículo em PDF e pede a resposta ao modelo generativo (Gemini).
package assistant
