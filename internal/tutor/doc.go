// Package tutor defines the boundary between the tutor chat and the
// language model that writes its replies.
//
// The tutor practices with the learner using only words the learner has
// already studied. LearnedVocabulary picks those words, and Responder
// implementations turn a conversation into the next assistant reply.
package tutor
