// Package mail delivers the transactional messages the auth flows produce:
// verification codes and password-reset codes.
//
// Two senders are provided. SMTPSender speaks plain SMTP with optional AUTH
// and is the production path. LogSender writes the message to the structured
// log instead of sending it, which is how local development reads its codes.
//
// Delivery is best-effort from the caller's point of view: orchestration
// flows log mail failures but do not roll back on them.
package mail
