package services

// Static knowledge base about Sensus and TOTVS Datasul, sent verbatim as
// domain context on every chatbot exchange.

const sensusKnowledge = `A Sensus é uma empresa especializada em tecnologia de automação que oferece soluções para diversos departamentos e setores das organizações.

PRODUTOS E SERVIÇOS DA SENSUS:
- Sistema de Coleta de Dados: Controle na palma da mão, minimizando erros operacionais e integrado com máquinas e ERPs
- App Entrega EPI: Aplicativo para gestão de entrega de EPIs
- Checklist: Sistema para eliminar controles manuais e planilhas
- Manufatura: Sistemas para controle de produção descomplicados

SERVIÇOS:
- Consultoria: Implantação de Bloco K, obrigações fiscais, e-social, Produção, Estoque, Vendas, pedidos de compra. Especialização em ERP TOTVS linha Datasul
- Desenvolvimento: Programação em Progress, Dotnet e outras linguagens
- Suporte Especializado: Atendimento pessoal com foco em resolução de problemas em programas customizados e dúvidas para ERP TOTVS linha Datasul
- Integrações: Desenvolvimento de integrações de sistemas satélites com o ERP TOTVS linha Datasul

CONTATO:
- Endereço: Rua Dona Francisca, 8.300 - Sala 310, Zona Industrial Norte - CEP 89.219-600 – Joinville / SC
- Telefone: (47) 3029-2866
- E-mail: fale.com@sensustec.com.br`

const datasulKnowledge = `TOTVS DATASUL é um ERP robusto e completo, desenvolvido pela TOTVS especificamente para empresas de manufatura e indústrias.

PRINCIPAIS MÓDULOS DO DATASUL:
- Manufatura: Controle de produção, planejamento, sequenciamento
- Estoque: Gestão de materiais, movimentações, inventários
- Vendas: Gestão comercial, pedidos, faturamento
- Compras: Gestão de fornecedores, cotações, pedidos de compra
- Financeiro: Contas a pagar, contas a receber, fluxo de caixa
- Contabilidade: Escrituração fiscal, balancetes, demonstrativos
- Recursos Humanos: Folha de pagamento, benefícios, ponto eletrônico

CARACTERÍSTICAS TÉCNICAS:
- Linguagem de programação: Progress 4GL
- Banco de dados: Progress OpenEdge
- Arquitetura: Cliente/servidor e web

OBRIGAÇÕES FISCAIS NO DATASUL:
- Bloco K: Controle de produção e estoque para o SPED Fiscal
- E-Social: Integração com eventos trabalhistas
- NFe: Emissão de notas fiscais eletrônicas
- SPED: Escrituração digital fiscal e contábil`

// DomainKnowledge returns the full static context passed to the answer
// provider.
func DomainKnowledge() string {
	return "CONHECIMENTO SOBRE A SENSUS:\n" + sensusKnowledge +
		"\n\nCONHECIMENTO SOBRE TOTVS DATASUL:\n" + datasulKnowledge
}
