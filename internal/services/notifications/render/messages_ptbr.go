package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "notification.generic.title", "Notificação")
	message.SetString(lang, "notification.generic.body", "Você tem uma nova notificação.")
	message.SetString(lang, "notification.campaign.unnamed", "uma campanha")
	message.SetString(lang, "notification.character.unnamed", "Um personagem")
	message.SetString(lang, "notification.campaign_invite.title", "Convite de campanha")
	message.SetString(lang, "notification.campaign_invite.body", "Você foi convidado para participar de %s.")
	message.SetString(lang, "notification.character_pending.title", "Pedido de entrada aguardando aprovação")
	message.SetString(lang, "notification.character_pending.body", "%s quer entrar em %s.")
	message.SetString(lang, "notification.character_approved.title", "Personagem aprovado")
	message.SetString(lang, "notification.character_approved.body", "%s foi admitido em %s.")
	message.SetString(lang, "notification.character_rejected.title", "Personagem não admitido")
	message.SetString(lang, "notification.character_rejected.body", "%s não foi admitido em %s.")
	message.SetString(lang, "notification.new_party_member.title", "Novo membro no grupo")
	message.SetString(lang, "notification.new_party_member.body", "%s entrou em %s.")
	message.SetString(lang, "notification.character_left.title", "Personagem saiu do grupo")
	message.SetString(lang, "notification.character_left.body", "%s se afastou de %s.")
	message.SetString(lang, "notification.character_deceased.title", "Personagem morreu")
	message.SetString(lang, "notification.character_deceased.body", "%s caiu em %s.")
}
